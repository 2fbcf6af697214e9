package bootstrap

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ledger-sync/pkg/config"
	"github.com/jhoicas/ledger-sync/pkg/logger"
)

func memoryConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Name: "ledger-sync", Storage: config.StorageMemory},
		JWT: config.JWTConfig{Secret: "secret"},
		Ledger: config.LedgerConfig{
			PageSize:    100,
			LockTimeout: time.Second,
			StateTTL:    time.Minute,
		},
	}
}

func TestBuild_Memoria(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "test", Level: "warn", Output: &buf})

	c, cleanup, err := Build(context.Background(), memoryConfig(), log)
	require.NoError(t, err)
	defer cleanup()

	require.NotNil(t, c.Import)
	require.NotNil(t, c.Export)
	require.NotNil(t, c.Single)
	require.NotNil(t, c.Logs)
	require.NotNil(t, c.Connection)
	assert.Contains(t, buf.String(), "almacenamiento en memoria")

	st, err := c.Connection.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Connected)
}

func TestBuild_AlmacenamientoDesconocido(t *testing.T) {
	cfg := memoryConfig()
	cfg.App.Storage = "sqlite"
	log := logger.New(logger.Config{Env: "test", Output: &bytes.Buffer{}})

	_, _, err := Build(context.Background(), cfg, log)
	require.Error(t, err)
}
