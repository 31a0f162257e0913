package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyurdhanani/store-management-project/internal/config"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_NAME", "inventory")
	t.Setenv("DB_LOCK_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 2*time.Second, cfg.DB.LockTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "postgres://postgres:@localhost:5432/inventory?sslmode=disable", cfg.ConnectionString())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("DB_LOCK_TIMEOUT", "soon")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Format = "json"
	cfg.Log.Level = "debug"

	logger := config.NewLogger(cfg)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))

	cfg.Log.Level = "nonsense"
	assert.False(t, config.NewLogger(cfg).Enabled(t.Context(), slog.LevelDebug))
}
