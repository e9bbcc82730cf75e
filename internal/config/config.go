// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Portal PortalConfig `yaml:"portal" mapstructure:"portal"`
	Sync   SyncConfig   `yaml:"sync" mapstructure:"sync"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// PortalConfig holds the operations-portal API settings the snapshot fetchers
// talk to.
type PortalConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// SyncConfig configures snapshot synchronization.
type SyncConfig struct {
	Region             string  `yaml:"region" mapstructure:"region"`
	MinLat             float64 `yaml:"min_lat" mapstructure:"min_lat"`
	MinLng             float64 `yaml:"min_lng" mapstructure:"min_lng"`
	MaxLat             float64 `yaml:"max_lat" mapstructure:"max_lat"`
	MaxLng             float64 `yaml:"max_lng" mapstructure:"max_lng"`
	CellKM             float64 `yaml:"cell_km" mapstructure:"cell_km"`
	SiteProfileWorkers int     `yaml:"site_profile_workers" mapstructure:"site_profile_workers"`
}

// ServerConfig configures the analysis API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EXPANSION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.sqlite_path", "expansion.db")
	v.SetDefault("portal.timeout_secs", 15)
	v.SetDefault("portal.rate_per_sec", 5.0)
	v.SetDefault("portal.max_retries", 2)
	v.SetDefault("sync.cell_km", 2.0)
	v.SetDefault("sync.site_profile_workers", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration required by a command group is
// present.
func (c *Config) Validate(section string) error {
	switch section {
	case "store":
		switch c.Store.Driver {
		case "postgres":
			if c.Store.DatabaseURL == "" {
				return eris.New("config: store.database_url is required for the postgres driver")
			}
		case "sqlite":
			if c.Store.SQLitePath == "" {
				return eris.New("config: store.sqlite_path is required for the sqlite driver")
			}
		default:
			return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
		}
	case "portal":
		if c.Portal.BaseURL == "" {
			return eris.New("config: portal.base_url is required")
		}
	case "sync":
		if err := c.Validate("store"); err != nil {
			return err
		}
		if err := c.Validate("portal"); err != nil {
			return err
		}
		if c.Sync.Region == "" {
			return eris.New("config: sync.region is required")
		}
	default:
		return eris.Errorf("config: unknown validation section %q", section)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
