package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_STORAGE", "memory")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.App.Storage)
	assert.Equal(t, 3, cfg.ERP.NumberingRetries)
	assert.True(t, cfg.ERP.AutoReceipts)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
}

func TestLoad_PoolInvalido(t *testing.T) {
	t.Setenv("APP_STORAGE", "memory")
	t.Setenv("DB_MAX_CONNS", "2")
	t.Setenv("DB_MIN_CONNS", "4")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_EnvSobrescribe(t *testing.T) {
	t.Setenv("APP_STORAGE", "memory")
	t.Setenv("ERP_DEFAULT_SERIES", "B")
	t.Setenv("ERP_NUMBERING_RETRIES", "5")
	t.Setenv("ERP_AUTO_RECEIPTS", "false")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "B", cfg.ERP.DefaultSeries)
	assert.Equal(t, 5, cfg.ERP.NumberingRetries)
	assert.False(t, cfg.ERP.AutoReceipts)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_AlmacenamientoInvalido(t *testing.T) {
	t.Setenv("APP_STORAGE", "sqlite")
	_, err := Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "erp", Password: "p@ss/w", DBName: "erp", SSLMode: "disable"}
	assert.Equal(t, "postgres://erp:p%40ss%2Fw@db:5432/erp?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
