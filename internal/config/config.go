// Package config loads Yatube settings from defaults, an optional YAML file
// and YATUBE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Session    SessionConfig    `mapstructure:"session"`
	Log        LogConfig        `mapstructure:"log"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Templates  TemplatesConfig  `mapstructure:"templates"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	Env          string        `mapstructure:"env"` // "development" or "production"
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// SessionConfig holds session cookie settings
type SessionConfig struct {
	CookieName string        `mapstructure:"cookie_name"`
	Expiration time.Duration `mapstructure:"expiration"`
	Secure     bool          `mapstructure:"secure"`
}

// LogConfig holds logger settings. An empty File logs to stdout only.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// PaginationConfig holds page sizes of the post listings
type PaginationConfig struct {
	IndexPerPage   int `mapstructure:"index_per_page"`
	GroupPerPage   int `mapstructure:"group_per_page"`
	ProfilePerPage int `mapstructure:"profile_per_page"`
}

// TemplatesConfig selects the template source. An empty Dir uses the
// templates embedded in the binary.
type TemplatesConfig struct {
	Dir string `mapstructure:"dir"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)

	v.SetDefault("session.cookie_name", "yatube_session")
	v.SetDefault("session.expiration", "336h")
	v.SetDefault("session.secure", false)

	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("pagination.index_per_page", 10)
	v.SetDefault("pagination.group_per_page", 10)
	v.SetDefault("pagination.profile_per_page", 10)

	v.SetDefault("templates.dir", "")
}

// Load reads configuration. When path is empty, config.yaml is looked up in
// the working directory and ./config and may be absent; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("YATUBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.url", "YATUBE_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	for name, n := range map[string]int{
		"pagination.index_per_page":   c.Pagination.IndexPerPage,
		"pagination.group_per_page":   c.Pagination.GroupPerPage,
		"pagination.profile_per_page": c.Pagination.ProfilePerPage,
	} {
		if n < 1 {
			return fmt.Errorf("%s must be positive, got %d", name, n)
		}
	}
	if c.Session.Expiration <= 0 {
		return fmt.Errorf("session.expiration must be positive")
	}
	return nil
}
