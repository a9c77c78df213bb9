package infra

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLoggerProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production")
	logger.Debug().Msg("hidden")
	logger.Info().Str("tool", "game").Msg("generation settled")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not a single JSON object: %v (%q)", err, buf.String())
	}
	if entry["service"] != serviceName {
		t.Fatalf("service = %v, want %q", entry["service"], serviceName)
	}
	if entry["tool"] != "game" || entry["level"] != "info" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewLoggerTestEnvIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "test")
	logger.Info().Msg("quiet")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}
