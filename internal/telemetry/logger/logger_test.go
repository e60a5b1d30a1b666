package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func newJSONLogger(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default config", cfg: DefaultConfig()},
		{name: "text format", cfg: Config{Level: "debug", Format: "text"}},
		{name: "console format", cfg: Config{Level: "warn", Format: "console"}},
		{name: "empty level and format", cfg: Config{}},
		{name: "unknown format", cfg: Config{Level: "info", Format: "xml"}, wantErr: true},
		{name: "unknown level", cfg: Config{Level: "loud", Format: "json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if l == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newJSONLogger(t, "debug")

	tests := []struct {
		level   string
		logFunc func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.logFunc("test message", "component", "redisserver")

			entry := decodeEntry(t, buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["msg"] != "test message" {
				t.Errorf("msg = %v", entry["msg"])
			}
			if entry["component"] != "redisserver" {
				t.Errorf("component = %v", entry["component"])
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newJSONLogger(t, "warn")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Warn("shown")
	if buf.Len() == 0 {
		t.Error("warn should be written at warn level")
	}
}

func TestSetLevel(t *testing.T) {
	l, buf := newJSONLogger(t, "info")
	defer SetLevel("info")

	SetLevel("error")
	if GetLevel() != "error" {
		t.Errorf("GetLevel() = %q, want error", GetLevel())
	}
	l.Warn("hidden")
	if buf.Len() != 0 {
		t.Errorf("warn should be filtered after SetLevel(error), got %q", buf.String())
	}

	SetLevel("bogus")
	if GetLevel() != "error" {
		t.Errorf("unknown level must be ignored, got %q", GetLevel())
	}

	SetLevel("debug")
	l.Debug("shown")
	if buf.Len() == 0 {
		t.Error("debug should be written after SetLevel(debug)")
	}
}

func TestLogger_With(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	l.With("remote", "127.0.0.1:5000").Info("conn opened")

	entry := decodeEntry(t, buf)
	if entry["remote"] != "127.0.0.1:5000" {
		t.Errorf("remote = %v", entry["remote"])
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.WithContext(context.Background()).Info("listening", "addr", "127.0.0.1:6379")
	if !strings.Contains(buf.String(), "addr=127.0.0.1:6379") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Debug("x")
	l.With("a", 1).WithContext(context.Background()).Error("y")
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	l, buf := newJSONLogger(t, "info")
	SetDefault(l)
	Info("via default")
	if buf.Len() == 0 {
		t.Error("package-level Info should use the default logger")
	}

	SetDefault(nil)
	if Default() != l {
		t.Error("SetDefault(nil) must keep the current logger")
	}
}
