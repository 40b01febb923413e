package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URI", "postgres://u:p@localhost:5432/db")

	cfg, err := Load(viper.New())

	require.NoError(t, err)
	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, ":8080", cfg.Server.RunAddress)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "migrations", cfg.DB.Migrations)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.Equal(t, 500, cfg.Sync.MaxBatchSize)
	assert.Equal(t, "@every 5m", cfg.Sync.TelemetryReconcileCron)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URI", "postgres://u:p@db:5432/workpro")
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RUN_ADDRESS", ":9090")
	t.Setenv("SYNC_MAX_BATCH_SIZE", "50")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load(viper.New())

	require.NoError(t, err)
	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, ":9090", cfg.Server.RunAddress)
	assert.Equal(t, 50, cfg.Sync.MaxBatchSize)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing database uri", func(t *testing.T) {
		t.Setenv("DATABASE_URI", "")

		_, err := Load(viper.New())

		assert.ErrorIs(t, err, ErrMissingDatabaseURI)
	})

	t.Run("prod requires jwt secret", func(t *testing.T) {
		t.Setenv("DATABASE_URI", "postgres://localhost/db")
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("JWT_SECRET", "")

		_, err := Load(viper.New())

		assert.Error(t, err)
	})
}
