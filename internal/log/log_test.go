package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetLogger_ComponentField(t *testing.T) {
	old := Logger
	defer SetLogger(old)

	var buf bytes.Buffer
	SetLogger(NewJSONLogger(&buf, "debug"))
	Token.Debug().Str("op", "unlock").Msg("committed")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if line["component"] != "token" {
		t.Errorf("component = %v, want token", line["component"])
	}
	if line["op"] != "unlock" {
		t.Errorf("op = %v, want unlock", line["op"])
	}
}

func TestInit_File(t *testing.T) {
	old := Logger
	defer SetLogger(old)

	path := filepath.Join(t.TempDir(), "lockup.log")
	if err := Init("info", true, path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Journal.Info().Msg("appended")
	Journal.Debug().Msg("filtered")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "appended") {
		t.Errorf("log file missing info line: %q", data)
	}
	if strings.Contains(string(data), "filtered") {
		t.Errorf("debug line should be filtered at info level: %q", data)
	}
}
