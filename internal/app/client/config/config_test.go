package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	t.Setenv("WORKPRO_CONFIG_DIR", dir)

	// Act
	cfg, err := Load(viper.New(), "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, defaultServerAddress, cfg.ServerAddress)
	assert.Equal(t, defaultBatchSize, cfg.BatchSize)
	assert.Equal(t, filepath.Join(dir, outboxFile), cfg.OutboxPath)
	assert.NotEmpty(t, cfg.DeviceID)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL())
}

func TestLoad_DeviceIDIsStable(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WORKPRO_CONFIG_DIR", dir)

	first, err := Load(viper.New(), "")
	require.NoError(t, err)
	second, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, first.DeviceID, second.DeviceID)
}

func TestLoad_ConfigFileAndEnv(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(
		"server_address: sync.example.com\nenable_tls: true\nbatch_size: 25\ndevice_id: tablet-7\ntoken: from-file\n",
	), 0o600))
	t.Setenv("WORKPRO_CONFIG_DIR", dir)
	t.Setenv("WORKPRO_TOKEN", "from-env")

	// Act
	cfg, err := Load(viper.New(), file)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "https://sync.example.com", cfg.BaseURL())
	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, "tablet-7", cfg.DeviceID)
	assert.Equal(t, "from-env", cfg.Token)
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("WORKPRO_CONFIG_DIR", t.TempDir())
	t.Setenv("WORKPRO_BATCH_SIZE", "0")

	_, err := Load(viper.New(), "")

	assert.Error(t, err)
}
