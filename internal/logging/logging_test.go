package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", "debug", true, true},
		{"info", "info", false, true},
		{"default", "", false, true},
		{"upper case", "WARN", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(&buf, Options{Level: tt.level})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			logger.Debug("debug message")
			logger.Info("info message")

			out := buf.String()
			if got := strings.Contains(out, "debug message"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info message"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Format: "json"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("upstream request", "endpoint", "streams")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["endpoint"] != "streams" {
		t.Errorf("endpoint = %v, want streams", entry["endpoint"])
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New(&buf, Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New(&buf, Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}
