package config

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

type envTestConfig struct {
	Port int `env:"CARDBATTLE_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("CARDBATTLE_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ContentDir != "content" {
		t.Errorf("ContentDir = %q, want content", cfg.ContentDir)
	}
	if cfg.ReplayPace != 350*time.Millisecond {
		t.Errorf("ReplayPace = %s, want 350ms", cfg.ReplayPace)
	}
	if cfg.Seed != 0 || cfg.JournalPath != "" {
		t.Errorf("unexpected non-zero optional fields: %+v", cfg)
	}
	if lvl, _ := cfg.Level(); lvl != zapcore.WarnLevel {
		t.Errorf("Level = %s, want warn", lvl)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CARDBATTLE_CONTENT_DIR", "/tmp/cards")
	t.Setenv("CARDBATTLE_SEED", "42")
	t.Setenv("CARDBATTLE_REPLAY_PACE", "1s")
	t.Setenv("CARDBATTLE_LOG_LEVEL", "debug")
	t.Setenv("CARDBATTLE_JOURNAL_PATH", "matches.db")
	t.Setenv("CARDBATTLE_DECK_P0", "vanguard")
	t.Setenv("CARDBATTLE_DECK_P1", "blood_pact")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		ContentDir:  "/tmp/cards",
		JournalPath: "matches.db",
		Seed:        42,
		ReplayPace:  time.Second,
		LogLevel:    "debug",
		DeckP0:      "vanguard",
		DeckP1:      "blood_pact",
	}
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"bad seed", "CARDBATTLE_SEED", "abc", "parse env"},
		{"bad pace", "CARDBATTLE_REPLAY_PACE", "fast", "parse env"},
		{"negative pace", "CARDBATTLE_REPLAY_PACE", "-1s", "negative"},
		{"bad level", "CARDBATTLE_LOG_LEVEL", "loud", "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}
