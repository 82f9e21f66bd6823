package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected valid JSON output, got error: %v (%q)", err, buf.String())
	}
	return entry
}

func TestNew_Environments(t *testing.T) {
	for _, env := range []string{"development", "production", "test"} {
		log := New(env)
		if log == nil || log.GetZerolog() == nil {
			t.Fatalf("Expected logger for env %s", env)
		}
	}
}

func TestInfo_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.Info("property created", map[string]interface{}{
		"property_id": "p-1",
		"amount":      2600,
	})

	entry := decodeLine(t, &buf)
	if entry["message"] != "property created" {
		t.Errorf("Expected message, got %v", entry["message"])
	}
	if entry["property_id"] != "p-1" {
		t.Errorf("Expected property_id field, got %v", entry["property_id"])
	}
	if entry["service"] != "land-tax" {
		t.Errorf("Expected service field, got %v", entry["service"])
	}
}

func TestError_IncludesError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.Error("payment write failed", errors.New("connection reset"), map[string]interface{}{
		"component": "repository",
	})

	output := buf.String()
	if !strings.Contains(output, "connection reset") {
		t.Error("Expected log output to contain error message")
	}
	if !strings.Contains(output, "repository") {
		t.Error("Expected log output to contain component field")
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		env       string
		debugSeen bool
		infoSeen  bool
		warnSeen  bool
	}{
		{env: "development", debugSeen: true, infoSeen: true, warnSeen: true},
		{env: "production", debugSeen: false, infoSeen: true, warnSeen: true},
		{env: "test", debugSeen: false, infoSeen: false, warnSeen: true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(tt.env, &buf)

			log.Debug("debug message", nil)
			log.Info("info message", nil)
			log.Warn("warn message", nil)

			output := buf.String()
			if strings.Contains(output, "debug message") != tt.debugSeen {
				t.Errorf("debug visibility mismatch for %s", tt.env)
			}
			if strings.Contains(output, "info message") != tt.infoSeen {
				t.Errorf("info visibility mismatch for %s", tt.env)
			}
			if strings.Contains(output, "warn message") != tt.warnSeen {
				t.Errorf("warn visibility mismatch for %s", tt.env)
			}
		})
	}
}

func TestChildLoggers(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.With(map[string]interface{}{"component": "payments"}).
		WithRequestID("req-12345").
		WithUserID("user-7").
		Info("receipt issued", nil)

	entry := decodeLine(t, &buf)
	if entry["component"] != "payments" {
		t.Error("Expected component field from With")
	}
	if entry["request_id"] != "req-12345" {
		t.Error("Expected request_id field")
	}
	if entry["user_id"] != "user-7" {
		t.Error("Expected user_id field")
	}
}

func TestNilFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.Info("message with nil fields", nil)

	if !strings.Contains(buf.String(), "message with nil fields") {
		t.Error("Expected message to be logged even with nil fields")
	}
}
