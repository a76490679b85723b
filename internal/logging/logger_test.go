package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for input, want := range tests {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewLoggerJSONAddsDatadogFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := NewLogger(buf, "info", "json", "forward")
	logger.Warn("firewall call failed", slog.String("rule", "dnat"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}

	for key, want := range map[string]string{
		"service": "forward",
		"status":  "warning",
		"message": "firewall call failed",
		"rule":    "dnat",
	} {
		if got, _ := record[key].(string); got != want {
			t.Fatalf("record[%q] = %q, want %q", key, got, want)
		}
	}
}

func TestNewLoggerTextRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := NewLogger(buf, "warn", "text", "forward")
	logger.Info("hidden")
	logger.Error("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "msg=shown") {
		t.Fatalf("expected text error record, got %q", out)
	}
}
