// internal/config/config.go
//
// Runtime configuration for both the terminal game and the HTTP server.
//
// Load order:
//   1. A .env file in the working directory, if present (godotenv; existing
//      environment variables win).
//   2. Environment variables parsed into Config (caarlos0/env).
//
// Command-line flags are applied on top by the caller.

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds every tunable of the program.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// WordsFile replaces the embedded word list with a system word file.
	WordsFile string `env:"WORDS_FILE"`
	// Seed fixes the answer; it must be a dictionary word.
	Seed      string `env:"SEED"`
	MaxTurns  int    `env:"MAX_TURNS" envDefault:"6"`
	DailySalt string `env:"DAILY_SALT" envDefault:"local_dev_salt"`

	Port           string `env:"PORT" envDefault:"5175"`
	DatabasePath   string `env:"DATABASE_PATH" envDefault:"./data/wordler.db"`
	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"wordle_token"`
	ClientOrigin   string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	Environment    string `env:"NODE_ENV" envDefault:"development"`

	// Live HTTP games are dropped after these periods without use.
	SessionIdleTTL     time.Duration `env:"SESSION_IDLE_TTL" envDefault:"24h"`
	SessionFinishedTTL time.Duration `env:"SESSION_FINISHED_TTL" envDefault:"10m"`
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be expressed as env defaults.
func (c Config) Validate() error {
	if c.MaxTurns < 1 {
		return fmt.Errorf("MAX_TURNS must be at least 1, got %d", c.MaxTurns)
	}
	if c.JWTExpiresDays < 1 {
		return fmt.Errorf("JWT_EXPIRES_DAYS must be at least 1, got %d", c.JWTExpiresDays)
	}
	if c.SessionIdleTTL <= 0 || c.SessionFinishedTTL <= 0 {
		return errors.New("SESSION_IDLE_TTL and SESSION_FINISHED_TTL must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// Production reports whether cookies must be Secure / SameSite=None.
func (c Config) Production() bool { return c.Environment == "production" }

// Level returns the parsed log level. Validate guarantees it parses.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
