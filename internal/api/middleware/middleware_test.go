package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iconidentify/streamrelay/internal/metrics"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestID_Generated(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = chimw.GetReqID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("request id %q is not a uuid: %v", seen, err)
	}
	if got := w.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("%s = %q, want %q", RequestIDHeader, got, seen)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"caller id kept", "abc-123", true},
		{"oversized id replaced", strings.Repeat("x", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, tt.incoming)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			if (got == tt.incoming) != tt.keep {
				t.Errorf("%s = %q, keep = %v", RequestIDHeader, got, tt.keep)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/streams/top", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("error = %q", body["error"])
	}
	if !strings.Contains(buf.String(), "panic in handler") {
		t.Errorf("panic was not logged: %s", buf.String())
	}
}

func TestRecovery_AbortHandlerRepanics(t *testing.T) {
	handler := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recover() = %v, want http.ErrAbortHandler", rec)
		}
	}()

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Get("/api/v1/channels/{login}/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})

	route := "/api/v1/channels/{login}/live"
	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(route, "418"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels/afro/live?x=1", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	out := buf.String()
	for _, want := range []string{"http request", "status=418", "size=15", "path=/api/v1/channels/afro/live", "request_id="} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}

	after := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(route, "418"))
	if after-before != 1 {
		t.Errorf("http_requests_total delta = %v, want 1", after-before)
	}
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	rw.Write([]byte("ok"))
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.status != http.StatusOK {
		t.Errorf("status = %d, want %d", rw.status, http.StatusOK)
	}
	if rw.size != 2 {
		t.Errorf("size = %d, want 2", rw.size)
	}
}
