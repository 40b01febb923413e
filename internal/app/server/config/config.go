package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env    string
	DB     DB
	Server Server
	Logger Logger
	Auth   Auth
	Sync   Sync
}

type DB struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
	MaxConns    int32  `env:"DB_MAX_CONNS"`
}

type Server struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

type Logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type Sync struct {
	MaxBatchSize           int    `env:"SYNC_MAX_BATCH_SIZE"`
	TelemetryReconcileCron string `env:"SYNC_TELEMETRY_RECONCILE_CRON"`
}

var ErrMissingDatabaseURI = errors.New("DATABASE_URI is required")

// MustLoad читает конфигурацию из окружения и .env; завершает процесс при ошибке
func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to read %s: %v", envPath, err)
	}

	cfg, err := Load(viper.New())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Load собирает конфигурацию из переменных окружения с значениями по умолчанию
func Load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetDefault("app_env", EnvLocal)
	v.SetDefault("run_address", ":8080")
	v.SetDefault("migrations_path", "migrations")
	v.SetDefault("log_level", "info")
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("sync_max_batch_size", 500)
	v.SetDefault("sync_telemetry_reconcile_cron", "@every 5m")

	cfg := &Config{
		Env: v.GetString("app_env"),
		DB: DB{
			DatabaseURI: v.GetString("database_uri"),
			Migrations:  v.GetString("migrations_path"),
			MaxConns:    v.GetInt32("db_max_conns"),
		},
		Server: Server{
			RunAddress:      v.GetString("run_address"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		},
		Logger: Logger{LogLevel: v.GetString("log_level")},
		Auth:   Auth{JWTSecret: v.GetString("jwt_secret")},
		Sync: Sync{
			MaxBatchSize:           v.GetInt("sync_max_batch_size"),
			TelemetryReconcileCron: v.GetString("sync_telemetry_reconcile_cron"),
		},
	}

	if cfg.DB.DatabaseURI == "" {
		return nil, ErrMissingDatabaseURI
	}
	if cfg.Auth.JWTSecret == "" {
		if cfg.Env == EnvProd {
			return nil, fmt.Errorf("JWT_SECRET is required in %s", EnvProd)
		}
		cfg.Auth.JWTSecret = "local-dev-secret"
	}
	return cfg, nil
}
