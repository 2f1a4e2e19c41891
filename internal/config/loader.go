package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and, when present,
// a config.yaml in the working directory, ./config or /etc/coolstore.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/coolstore")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config

	cfg.App.Port = v.GetInt("app_port")
	cfg.App.Env = v.GetString("app_env")
	cfg.App.ShutdownTimeout = v.GetDuration("app_shutdown_timeout")

	cfg.Log.Level = v.GetString("log_level")

	cfg.Database.URL = v.GetString("database_url")
	cfg.Database.MaxConns = v.GetInt32("db_max_conns")
	cfg.Database.MinConns = v.GetInt32("db_min_conns")
	cfg.Database.StatementTimeout = v.GetDuration("db_statement_timeout")

	cfg.Audit.Enabled = v.GetBool("audit_enabled")
	cfg.Audit.CompressThreshold = v.GetInt("audit_compress_threshold")

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_port", 8080)
	v.SetDefault("app_env", "development")
	v.SetDefault("app_shutdown_timeout", "30s")

	v.SetDefault("log_level", "info")

	v.SetDefault("db_max_conns", 10)
	v.SetDefault("db_min_conns", 1)
	v.SetDefault("db_statement_timeout", "30s")

	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_compress_threshold", 4096)
}

func validate(cfg *Config) error {
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		return fmt.Errorf("invalid APP_PORT %d", cfg.App.Port)
	}
	if cfg.Database.MinConns > cfg.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", cfg.Database.MinConns, cfg.Database.MaxConns)
	}
	return nil
}
