package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"API_BASE_URL", "API_TIMEOUT", "API_RATE_LIMIT", "API_RATE_BURST",
	"PORT", "CORS_ALLOW_ORIGINS",
	"DB_DRIVER", "SQLITE_PATH", "DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_PORT", "DB_SSLMODE",
	"POLL_INTERVAL", "TRACKING_TIMEOUT", "NOTICE_SUCCESS_TTL", "NOTICE_ERROR_TTL", "NOTICE_CARD_TTL",
	"STATUS_TABLE_FILE", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, 5.0, cfg.APIRateLimit)
	assert.Equal(t, 5, cfg.APIRateBurst)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "donatehub.db", cfg.DB.SQLitePath)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 600*time.Second, cfg.TrackingTimeout)
	assert.Equal(t, 10*time.Second, cfg.NoticeSuccess)
	assert.Equal(t, 5*time.Second, cfg.NoticeError)
	assert.Equal(t, 5*time.Second, cfg.NoticeCard)
	assert.Nil(t, cfg.StatusTable)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "https://api.example.org/api/v1/")
	t.Setenv("POLL_INTERVAL", "2s")
	t.Setenv("TRACKING_TIMEOUT", "30")
	t.Setenv("API_RATE_LIMIT", "0")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_USER", "donor")
	t.Setenv("DB_NAME", "donatehub")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.org/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.TrackingTimeout)
	assert.Equal(t, 0.0, cfg.APIRateLimit)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "host=localhost user=donor password= dbname=donatehub port=5432 sslmode=disable", cfg.DB.DSN())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.NotNil(t, cfg.NewLogger())
}

func TestFromEnvReportsEveryBadVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv("POLL_INTERVAL", "soon")
	t.Setenv("API_RATE_BURST", "many")
	t.Setenv("DB_DRIVER", "mongo")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLL_INTERVAL")
	assert.Contains(t, err.Error(), "API_RATE_BURST")
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestStatusTableFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "statuses.yaml")
	require.NoError(t, os.WriteFile(path, []byte("success:\n  - PAID\n  - SETTLED\nfailure:\n  - FAILED\n  - CANCELLED\n"), 0o600))
	t.Setenv("STATUS_TABLE_FILE", path)

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NotNil(t, cfg.StatusTable)
	assert.Equal(t, []string{"PAID", "SETTLED"}, cfg.StatusTable.Success)
	assert.Equal(t, []string{"FAILED", "CANCELLED"}, cfg.StatusTable.Failure)
}

func TestStatusTableFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadStatusTable(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("other: 1\n"), 0o600))
	_, err = LoadStatusTable(empty)
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("success: [PAID\n"), 0o600))
	_, err = LoadStatusTable(broken)
	assert.Error(t, err)
}
