package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultEnv           = "prod"
	defaultConfigDir     = ".workpro"
	defaultBatchSize     = 100
	defaultPlatform      = "cli"
	deviceIDFile         = "device_id"
	outboxFile           = "outbox.db"
)

type Config struct {
	Env           string
	ServerAddress string
	EnableTLS     bool
	Token         string
	DeviceID      string
	Platform      string
	AppVersion    string
	BatchSize     int
	ConfigDir     string
	OutboxPath    string
}

// MustLoad загружает конфигурацию клиента
func MustLoad(v *viper.Viper, cfgFile string) *Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	cfg, err := Load(v, cfgFile)
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load читает ~/.workpro/config.yaml (или cfgFile) и переменные окружения WORKPRO_*
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	v.SetEnvPrefix("workpro")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app_env", defaultEnv)
	v.SetDefault("server_address", defaultServerAddress)
	v.SetDefault("enable_tls", false)
	v.SetDefault("batch_size", defaultBatchSize)
	v.SetDefault("platform", defaultPlatform)
	v.SetDefault("app_version", "dev")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	v.SetDefault("config_dir", filepath.Join(homeDir, defaultConfigDir))

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(v.GetString("config_dir"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	configDir := v.GetString("config_dir")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	cfg := &Config{
		Env:           v.GetString("app_env"),
		ServerAddress: v.GetString("server_address"),
		EnableTLS:     v.GetBool("enable_tls"),
		Token:         v.GetString("token"),
		DeviceID:      v.GetString("device_id"),
		Platform:      v.GetString("platform"),
		AppVersion:    v.GetString("app_version"),
		BatchSize:     v.GetInt("batch_size"),
		ConfigDir:     configDir,
		OutboxPath:    filepath.Join(configDir, outboxFile),
	}

	if cfg.DeviceID == "" {
		cfg.DeviceID, err = loadOrCreateDeviceID(configDir)
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadOrCreateDeviceID хранит идентификатор устройства между запусками
func loadOrCreateDeviceID(dir string) (string, error) {
	path := filepath.Join(dir, deviceIDFile)

	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read device id: %w", err)
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write device id: %w", err)
	}
	return id, nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size должен быть положительным")
	}
	return nil
}

// BaseURL адрес сервера со схемой
func (c *Config) BaseURL() string {
	if strings.HasPrefix(c.ServerAddress, "http://") || strings.HasPrefix(c.ServerAddress, "https://") {
		return strings.TrimRight(c.ServerAddress, "/")
	}
	scheme := "http://"
	if c.EnableTLS {
		scheme = "https://"
	}
	return scheme + strings.TrimRight(c.ServerAddress, "/")
}
