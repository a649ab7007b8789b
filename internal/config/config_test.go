package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.Ledger.TxTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Alerts.DedupWindow)
	assert.Equal(t, 30, cfg.Alerts.ExpiryWindowDays)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ALERT_DEDUP_WINDOW", "12h")
	t.Setenv("ALERT_EXPIRY_WINDOW_DAYS", "14")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 12*time.Hour, cfg.Alerts.DedupWindow)
	assert.Equal(t, 14, cfg.Alerts.ExpiryWindowDays)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("LEDGER_TX_TIMEOUT", "not-a-duration")

	_, err := Load()

	assert.Error(t, err)
}
