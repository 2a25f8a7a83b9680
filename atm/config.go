package atm

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

const (
	BackendFile = "file"
	BackendPG   = "pg"
)

// Config is a configuration for the atm application
type Config struct {
	HTTPAddr string
	// ISO8583Addr is the host link listen address; empty disables the link.
	ISO8583Addr string
	// Backend selects where the startup ledger comes from: "file" or "pg".
	Backend string
	// SeedFile is the YAML ledger read by the file backend.
	SeedFile string
	// DSN is the Postgres connection string for the pg backend.
	DSN string
	// RateLimit is the number of HTTP requests allowed per client IP per minute; 0 disables limiting.
	RateLimit int
	LogLevel  slog.Level
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:    "localhost:9090",
		ISO8583Addr: "localhost:8583",
		Backend:     BackendFile,
		SeedFile:    "accounts.yaml",
		RateLimit:   120,
		LogLevel:    slog.LevelInfo,
	}
}

// LoadConfig reads the given .env files (missing files are skipped) and
// overlays the process environment on DefaultConfig. Variables already set
// in the environment win over .env values.
func LoadConfig(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := DefaultConfig()
	cfg.HTTPAddr = getenv("HTTP_ADDR", cfg.HTTPAddr)
	if v, ok := os.LookupEnv("ISO8583_ADDR"); ok {
		cfg.ISO8583Addr = v
	}
	cfg.Backend = strings.ToLower(getenv("REPO_BACKEND", cfg.Backend))
	cfg.SeedFile = getenv("SEED_FILE", cfg.SeedFile)
	cfg.DSN = getenv("DB_DSN", cfg.DSN)

	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be a non-negative integer, got %q", v)
		}
		cfg.RateLimit = n
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile:
		if c.SeedFile == "" {
			return fmt.Errorf("SEED_FILE is required for %s backend", BackendFile)
		}
	case BackendPG:
		if c.DSN == "" {
			return fmt.Errorf("DB_DSN is required for %s backend", BackendPG)
		}
	default:
		return fmt.Errorf("unsupported REPO_BACKEND=%s", c.Backend)
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
