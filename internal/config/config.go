package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Session  SessionConfig
	HTTP     HTTPConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path           string
	MigrationsPath string
}

// SessionConfig holds workspace session settings.
type SessionConfig struct {
	Name          string
	RetentionDays int
}

// HTTPConfig holds request execution settings.
type HTTPConfig struct {
	TimeoutSeconds int
}

// Load reads configuration from file and env. Env var overrides use prefix RESTDECK_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "restdeck", "restdeck.db"))
	v.SetDefault("database.migrations_path", "internal/database/migrations")
	v.SetDefault("session.name", "workspace")
	v.SetDefault("session.retention_days", 30)
	v.SetDefault("http.timeout_seconds", 30)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("RESTDECK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "restdeck"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("RESTDECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
