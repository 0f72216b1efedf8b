package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

// =============================================================================
// ClassifiedError Tests
// =============================================================================

func TestKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindBadRequest, http.StatusBadRequest},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusBadRequest},
		{KindRateLimited, http.StatusTooManyRequests},
		{KindServerError, http.StatusInternalServerError},
		{KindTimeout, http.StatusBadRequest},
		{KindConnectionFailure, http.StatusBadRequest},
		{KindUnknown, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewError_StatusCode(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		wantCode *int
	}{
		{"bad request", KindBadRequest, intPtr(400)},
		{"not found", KindNotFound, intPtr(404)},
		{"rate limited", KindRateLimited, intPtr(429)},
		{"timeout carries none", KindTimeout, nil},
		{"connection carries none", KindConnectionFailure, nil},
		{"unknown carries none", KindUnknown, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewError(tt.kind, "boom")
			switch {
			case tt.wantCode == nil && err.StatusCode != nil:
				t.Errorf("StatusCode = %d, want nil", *err.StatusCode)
			case tt.wantCode != nil && err.StatusCode == nil:
				t.Errorf("StatusCode = nil, want %d", *tt.wantCode)
			case tt.wantCode != nil && *err.StatusCode != *tt.wantCode:
				t.Errorf("StatusCode = %d, want %d", *err.StatusCode, *tt.wantCode)
			}
		})
	}
}

func TestClassifiedError_Is(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NewError(KindNotFound, "User 'x' not found"))

	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false, want true")
	}
	if errors.Is(err, ErrBadRequest) {
		t.Error("errors.Is(err, ErrBadRequest) = true, want false")
	}
}

func TestClassifiedError_UnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewError(KindConnectionFailure, "Failed to connect").WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("cause should be reachable through Unwrap")
	}
	if !errors.Is(err, ErrConnectionFailure) {
		t.Error("kind sentinel should still match")
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		if err := Wrap(nil, "ctx"); err != nil {
			t.Errorf("Wrap(nil) = %v, want nil", err)
		}
	})

	t.Run("plain error becomes unknown", func(t *testing.T) {
		err := Wrap(errors.New("json: bad token"), "Error processing streams")
		ce, ok := AsClassified(err)
		if !ok {
			t.Fatalf("expected ClassifiedError, got %T", err)
		}
		if ce.Kind != KindUnknown {
			t.Errorf("Kind = %v, want unknown", ce.Kind)
		}
		if ce.Message != "Error processing streams: json: bad token" {
			t.Errorf("Message = %q", ce.Message)
		}
		if ce.StatusCode != nil {
			t.Errorf("StatusCode = %d, want nil", *ce.StatusCode)
		}
	})

	t.Run("classified error passes through", func(t *testing.T) {
		orig := NewError(KindRateLimited, "Rate limit exceeded").WithRetryAfter(30)
		err := Wrap(orig, "Error processing streams")
		if err != orig {
			t.Errorf("Wrap returned %v, want the original error", err)
		}
	})

	t.Run("wrapped classified error is not double wrapped", func(t *testing.T) {
		orig := NewError(KindNotFound, "gone")
		err := Wrap(fmt.Errorf("outer: %w", orig), "ctx")
		if err != orig {
			t.Errorf("Wrap returned %v, want the inner classified error", err)
		}
	})
}

func TestMissingField(t *testing.T) {
	err := MissingField("stream", "title")
	if err.Kind != KindUnknown {
		t.Errorf("Kind = %v, want unknown", err.Kind)
	}
	if !strings.Contains(err.Error(), "title") {
		t.Errorf("message %q should name the field", err.Error())
	}
}

// =============================================================================
// Thumbnail Tests
// =============================================================================

func TestDeriveThumbnails(t *testing.T) {
	tests := []struct {
		name     string
		template string
		p        Placeholders
		want     Thumbnail
	}{
		{
			name:     "stream template",
			template: "https://cdn.example/live_user_x-{width}x{height}.jpg",
			p:        BracePlaceholders,
			want: Thumbnail{
				Small:  "https://cdn.example/live_user_x-320x180.jpg",
				Medium: "https://cdn.example/live_user_x-640x360.jpg",
				Large:  "https://cdn.example/live_user_x-1920x1080.jpg",
			},
		},
		{
			name:     "video template",
			template: "https://cdn.example/thumb0-%{width}x%{height}.jpg",
			p:        PercentPlaceholders,
			want: Thumbnail{
				Small:  "https://cdn.example/thumb0-320x180.jpg",
				Medium: "https://cdn.example/thumb0-640x360.jpg",
				Large:  "https://cdn.example/thumb0-1920x1080.jpg",
			},
		},
		{
			name:     "repeated placeholders",
			template: "https://x/{width}/{height}/{width}",
			p:        BracePlaceholders,
			want: Thumbnail{
				Small:  "https://x/320/180/320",
				Medium: "https://x/640/360/640",
				Large:  "https://x/1920/1080/1920",
			},
		},
		{
			name:     "no placeholders",
			template: "https://x/profile.png",
			p:        BracePlaceholders,
			want: Thumbnail{
				Small:  "https://x/profile.png",
				Medium: "https://x/profile.png",
				Large:  "https://x/profile.png",
			},
		},
		{
			name:     "empty template",
			template: "",
			p:        PercentPlaceholders,
			want:     Thumbnail{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveThumbnails(tt.template, tt.p); got != tt.want {
				t.Errorf("DeriveThumbnails() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Record / Page Tests
// =============================================================================

func TestNewPage(t *testing.T) {
	empty := ""
	token := "eyJiIjpudWxsfQ"

	tests := []struct {
		name       string
		data       []Category
		cursor     *string
		wantLen    int
		wantCursor *string
	}{
		{"nil data becomes empty", nil, nil, 0, nil},
		{"empty cursor becomes nil", []Category{{ID: "1"}}, &empty, 1, nil},
		{"cursor kept verbatim", []Category{{ID: "1"}}, &token, 1, &token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(tt.data, tt.cursor)
			if page.Data == nil || len(page.Data) != tt.wantLen {
				t.Errorf("Data = %v, want %d items", page.Data, tt.wantLen)
			}
			if (page.Pagination.Cursor == nil) != (tt.wantCursor == nil) {
				t.Fatalf("Cursor = %v, want %v", page.Pagination.Cursor, tt.wantCursor)
			}
			if tt.wantCursor != nil && *page.Pagination.Cursor != *tt.wantCursor {
				t.Errorf("Cursor = %q, want %q", *page.Pagination.Cursor, *tt.wantCursor)
			}
		})
	}
}

func TestPage_JSONNullCursor(t *testing.T) {
	data, err := json.Marshal(NewPage([]Category{}, nil))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got := string(data); got != `{"data":[],"pagination":{"cursor":null}}` {
		t.Errorf("json = %s", got)
	}
}

func TestLiveStream_SidebarOmitsDetail(t *testing.T) {
	rec := LiveStream{StreamSummary: StreamSummary{UserName: "alice", ViewerCount: 3}}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	for _, key := range []string{"title", "id", "is_live", "tags"} {
		if _, ok := fields[key]; ok {
			t.Errorf("sidebar record should not contain %q", key)
		}
	}
	if v, ok := fields["hls_url"]; !ok || v != nil {
		t.Errorf("hls_url = %v (present=%v), want explicit null", v, ok)
	}
}

func intPtr(v int) *int { return &v }
