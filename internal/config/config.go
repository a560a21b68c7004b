package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Session  SessionConfig  `mapstructure:"session"`
	Setup    SetupConfig    `mapstructure:"setup"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`

	// FallbackConfigPath is a static JSON document served when the store
	// cannot produce a config (read path only).
	FallbackConfigPath string `mapstructure:"fallback_config_path"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"` // directory holding the .db file
	Name string `mapstructure:"name"`
}

// DSN returns the SQLite data source name.
func (d DatabaseConfig) DSN() string {
	return filepath.Join(d.Path, d.Name+".db")
}

type StorageConfig struct {
	LocalPath   string `mapstructure:"local_path"`
	MaxFileSize int64  `mapstructure:"max_file_size"`
}

type SessionConfig struct {
	Secret   string `mapstructure:"secret"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.TTLHours) * time.Hour
}

type SetupConfig struct {
	InstallationKey string `mapstructure:"installation_key"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Enabled reports whether SMTP delivery is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../..")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.path", "./data")
	viper.SetDefault("database.name", "linkbio")
	viper.SetDefault("storage.local_path", "./public/uploads")
	viper.SetDefault("storage.max_file_size", 10485760)
	viper.SetDefault("session.secret", "changeme-secret")
	viper.SetDefault("session.ttl_hours", 24)
	viper.SetDefault("setup.installation_key", "ionbehalfofallusersagreetothetermsandconditions")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("fallback_config_path", "./config.json")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Defaults are complete; a missing config file is not fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
