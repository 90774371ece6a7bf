package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_prodIsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{AppName: "npk-weather", Version: "1.2.0", Env: "prod", Level: slog.LevelInfo, Output: &buf})

	logger.Debug("hidden")
	logger.Info("report built", "location", "Braga,pt")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines; want 1: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for k, want := range map[string]string{"msg": "report built", "app": "npk-weather", "version": "1.2.0", "env": "prod", "location": "Braga,pt"} {
		if rec[k] != want {
			t.Errorf("%s=%v; want %q", k, rec[k], want)
		}
	}
}

func TestNew_devIsText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{AppName: "npk-weather", Env: "dev", Level: slog.LevelDebug, NoColor: true, Output: &buf})

	logger.Debug("barometer fallback", "error", "timeout")

	out := buf.String()
	if !strings.Contains(out, "barometer fallback") || !strings.Contains(out, "app=npk-weather") {
		t.Errorf("out=%q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("dev output looks like JSON: %q", out)
	}
}
