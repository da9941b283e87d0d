package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseDefaults(t *testing.T) {
	for _, k := range []string{"LOG_LEVEL", "WORDS_FILE", "SEED", "MAX_TURNS", "PORT", "JWT_EXPIRES_DAYS", "NODE_ENV", "SESSION_IDLE_TTL", "SESSION_FINISHED_TTL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.MaxTurns != 6 || cfg.Port != "5175" || cfg.JWTExpiresDays != 14 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionIdleTTL != 24*time.Hour || cfg.SessionFinishedTTL != 10*time.Minute {
		t.Fatalf("unexpected session TTLs: %v %v", cfg.SessionIdleTTL, cfg.SessionFinishedTTL)
	}
	if cfg.Level() != zerolog.InfoLevel {
		t.Fatalf("Level = %s, want info", cfg.Level())
	}
	if cfg.Production() {
		t.Fatal("Production() = true with default NODE_ENV")
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SEED", "crane")
	t.Setenv("MAX_TURNS", "4")
	t.Setenv("NODE_ENV", "production")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Seed != "crane" || cfg.MaxTurns != 4 || cfg.Level() != zerolog.DebugLevel || !cfg.Production() {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "zero turns", key: "MAX_TURNS", value: "0", wantErr: "MAX_TURNS"},
		{name: "non numeric turns", key: "MAX_TURNS", value: "six", wantErr: "parse env"},
		{name: "bad level", key: "LOG_LEVEL", value: "loud", wantErr: "LOG_LEVEL"},
		{name: "zero expiry", key: "JWT_EXPIRES_DAYS", value: "0", wantErr: "JWT_EXPIRES_DAYS"},
		{name: "zero session ttl", key: "SESSION_FINISHED_TTL", value: "0s", wantErr: "SESSION_FINISHED_TTL"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Parse()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Parse err = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DAILY_SALT=from_dotenv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("DAILY_SALT", "")
	os.Unsetenv("DAILY_SALT")
	t.Cleanup(func() { os.Unsetenv("DAILY_SALT") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DailySalt != "from_dotenv" {
		t.Fatalf("DailySalt = %q, want from_dotenv", cfg.DailySalt)
	}
}

func TestLoadWithoutDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load(); err != nil {
		t.Fatalf("Load without .env: %v", err)
	}
}
