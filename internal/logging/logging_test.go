package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSanitizingHandler_Keys(t *testing.T) {
	tests := []struct {
		key      string
		value    string
		wantMask bool
	}{
		{"Authorization", "Bearer abc", true},
		{"cookie", "session=1", true},
		{"password", "hunter2", true},
		{"github_token", "x", true},
		{"dbPassword", "x", true},
		{"file", "main.go", false},
		{"model", "llama3.2:latest", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(NewSanitizingHandler(slog.NewTextHandler(&buf, nil)))
			log.Info("msg", tt.key, tt.value)

			out := buf.String()
			masked := strings.Contains(out, Mask)
			if masked != tt.wantMask {
				t.Errorf("masked = %v, want %v (output %q)", masked, tt.wantMask, out)
			}
			if tt.wantMask && strings.Contains(out, tt.value) {
				t.Errorf("value %q leaked: %q", tt.value, out)
			}
		})
	}
}

func TestSanitizingHandler_Values(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewSanitizingHandler(slog.NewTextHandler(&buf, nil)))
	log.Info("msg", "header", "Bearer sk-live-1234567890")

	if strings.Contains(buf.String(), "sk-live") {
		t.Errorf("bearer value leaked: %q", buf.String())
	}
}

func TestSanitizingHandler_GroupsAndWith(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewSanitizingHandler(slog.NewJSONHandler(&buf, nil)))
	log.With("token", "abc").WithGroup("req").Info("msg", slog.Group("headers", "cookie", "s=1", "accept", "json"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if rec["token"] != Mask {
		t.Errorf("token = %v, want mask", rec["token"])
	}
	headers := rec["req"].(map[string]any)["headers"].(map[string]any)
	if headers["cookie"] != Mask {
		t.Errorf("cookie = %v, want mask", headers["cookie"])
	}
	if headers["accept"] != "json" {
		t.Errorf("accept = %v, want json", headers["accept"])
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	log.Info("hidden")
	log.Warn("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Errorf("expected JSON warn record, got %q", buf.String())
	}

	if _, err := New(&buf, "loud", "text"); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := New(&buf, "info", "xml"); err == nil {
		t.Error("expected error for invalid format")
	}
}
