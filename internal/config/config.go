// Package config loads server settings from the environment, an optional .env
// file and an optional config.yaml in the working directory.
package config

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

type Config struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	PostgresDSN     string        `mapstructure:"postgres_dsn" validate:"required"`
	RedisAddr       string        `mapstructure:"redis_addr" validate:"required,hostname_port"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db" validate:"gte=0,lte=15"`
	MetricsCacheTTL time.Duration `mapstructure:"metrics_cache_ttl" validate:"gt=0"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"log_format" validate:"required,oneof=json text"`
	FrontendURL     string        `mapstructure:"frontend_url" validate:"required,url"`
	AppEnv          string        `mapstructure:"app_env" validate:"required,oneof=development production test"`
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

var defaults = map[string]any{
	"port":              5000,
	"redis_addr":        "localhost:6379",
	"redis_password":    "",
	"redis_db":          0,
	"metrics_cache_ttl": "30s",
	"log_level":         "info",
	"log_format":        "json",
	"frontend_url":      "http://localhost:5173",
	"app_env":           "development",
}

// envKeys maps each setting to the variable it is read from.
var envKeys = map[string]string{
	"port":              "PORT",
	"postgres_dsn":      "POSTGRES_DSN",
	"redis_addr":        "REDIS_ADDR",
	"redis_password":    "REDIS_PASSWORD",
	"redis_db":          "REDIS_DB",
	"metrics_cache_ttl": "METRICS_CACHE_TTL",
	"log_level":         "LOG_LEVEL",
	"log_format":        "LOG_FORMAT",
	"frontend_url":      "FRONTEND_URL",
	"app_env":           "APP_ENV",
}

// Load reads config.yaml and .env from the working directory when present.
// Precedence, highest first: environment, .env, config.yaml, defaults.
func Load() (*Config, error) {
	return load(afero.NewOsFs(), ".")
}

func load(fs afero.Fs, dir string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	dotenv, err := readDotEnv(fs, filepath.Join(dir, ".env"))
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(dotenv); err != nil {
		return nil, fmt.Errorf("failed to merge .env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// readDotEnv returns the known settings found in path, keyed like the
// config file. A missing file yields an empty map.
func readDotEnv(fs afero.Fs, path string) (map[string]any, error) {
	settings := make(map[string]any)

	f, err := fs.Open(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	values, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for key, env := range envKeys {
		if value, ok := values[env]; ok {
			settings[key] = value
		}
	}

	return settings, nil
}
