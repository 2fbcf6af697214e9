package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ledger-sync/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoragePostgres, cfg.App.Storage)
	assert.Equal(t, 100, cfg.Ledger.PageSize)
	assert.Equal(t, 30*time.Second, cfg.Ledger.Timeout)
	assert.InDelta(t, 8.0, cfg.Ledger.RatePerSecond, 0.0001)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_VariablesLedger(t *testing.T) {
	t.Setenv("LEDGER_CLIENT_ID", "cid")
	t.Setenv("LEDGER_TIMEOUT_SECONDS", "5")
	t.Setenv("LEDGER_RATE_PER_SECOND", "2.5")
	t.Setenv("APP_STORAGE", "Memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "cid", cfg.Ledger.ClientID)
	assert.Equal(t, 5*time.Second, cfg.Ledger.Timeout)
	assert.InDelta(t, 2.5, cfg.Ledger.RatePerSecond, 0.0001)
	assert.Equal(t, config.StorageMemory, cfg.App.Storage)
}

func TestLoad_StorageInvalido_RetornaError(t *testing.T) {
	t.Setenv("APP_STORAGE", "redis")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss/word", DBName: "x", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%2Fword@db:5432/x?sslmode=disable", c.DSN())
}
