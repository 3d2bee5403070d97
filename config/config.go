// Package config reads runtime settings from CARDBATTLE_* environment
// variables. Command-line flags override these in cmd/cardbattle.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
)

// Config holds settings for one run of the game.
type Config struct {
	ContentDir  string        `env:"CARDBATTLE_CONTENT_DIR"  envDefault:"content"`
	SaveDir     string        `env:"CARDBATTLE_SAVE_DIR"`
	JournalPath string        `env:"CARDBATTLE_JOURNAL_PATH"`
	Seed        int64         `env:"CARDBATTLE_SEED"`
	ReplayPace  time.Duration `env:"CARDBATTLE_REPLAY_PACE"  envDefault:"350ms"`
	LogLevel    string        `env:"CARDBATTLE_LOG_LEVEL"    envDefault:"warn"`
	LogFile     string        `env:"CARDBATTLE_LOG_FILE"`
	DeckP0      string        `env:"CARDBATTLE_DECK_P0"`
	DeckP1      string        `env:"CARDBATTLE_DECK_P1"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads Config from the environment and checks it. A zero seed means
// the caller picks one.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	if c.ContentDir == "" {
		return fmt.Errorf("config: content dir is empty")
	}
	if c.ReplayPace < 0 {
		return fmt.Errorf("config: replay pace %s is negative", c.ReplayPace)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel into a zap level.
func (c Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("config: log level: %w", err)
	}
	return lvl, nil
}
