package app

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Timezone != "America/Sao_Paulo" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.CEP.Timeout != 5*time.Second || cfg.CEP.CacheSize != 512 {
		t.Errorf("CEP = %+v", cfg.CEP)
	}
	if !cfg.BriefingEnabled() {
		t.Error("Briefing should be enabled by default")
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("BRIEFING_SPEC", "off")
	t.Setenv("CEP_TIMEOUT", "2s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Port != 9090 || cfg.LogLevel != "debug" || cfg.CEP.Timeout != 2*time.Second {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if cfg.BriefingEnabled() {
		t.Error("BRIEFING_SPEC=off should disable the briefing")
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location() failed: %v", err)
	}
	if loc != time.UTC {
		t.Errorf("Location() = %v, want UTC", loc)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "HTTP_PORT", "70000"},
		{"port not a number", "HTTP_PORT", "http"},
		{"zero timeout", "CEP_TIMEOUT", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadConfig(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestConfigInvalidTimezone(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus"}
	if _, err := cfg.Location(); err == nil {
		t.Error("Expected error for unknown timezone")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown", "date", "2024-03-15")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "shown" || entry["service"] != ServiceName || entry["date"] != "2024-03-15" {
		t.Errorf("Unexpected entry %v", entry)
	}
}
