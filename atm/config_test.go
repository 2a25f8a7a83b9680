package atm_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alovak/atm-playground/atm"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

var configEnv = []string{
	"HTTP_ADDR", "ISO8583_ADDR", "REPO_BACKEND", "SEED_FILE", "DB_DSN", "RATE_LIMIT_PER_MINUTE", "LOG_LEVEL",
}

// clearConfigEnv unsets every variable LoadConfig reads; t.Setenv restores
// the original values when the test ends.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := atm.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, atm.DefaultConfig(), cfg)
}

func TestLoadConfig_Env(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HTTP_ADDR", "127.0.0.1:0")
	t.Setenv("ISO8583_ADDR", "")
	t.Setenv("REPO_BACKEND", "PG")
	t.Setenv("DB_DSN", "postgres://localhost/atm?sslmode=disable")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := atm.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:0", cfg.HTTPAddr)
	require.Empty(t, cfg.ISO8583Addr)
	require.Equal(t, atm.BackendPG, cfg.Backend)
	require.Equal(t, "postgres://localhost/atm?sslmode=disable", cfg.DSN)
	require.Equal(t, 0, cfg.RateLimit)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HTTP_ADDR", "from-env:1")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=from-file:1\nSEED_FILE=ledger.yaml\n"), 0o600))

	cfg, err := atm.LoadConfig(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "from-env:1", cfg.HTTPAddr)
	require.Equal(t, "ledger.yaml", cfg.SeedFile)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":   {"REPO_BACKEND": "mongo"},
		"pg without dsn":    {"REPO_BACKEND": "pg"},
		"bad rate limit":    {"RATE_LIMIT_PER_MINUTE": "lots"},
		"negative rate":     {"RATE_LIMIT_PER_MINUTE": "-1"},
		"unknown log level": {"LOG_LEVEL": "chatty"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := atm.LoadConfig()
			require.Error(t, err)
		})
	}
}
