// Package config centralizes all application configuration into typed
// structs, loaded from an optional config.yaml plus SKIHUD_-prefixed
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration container.
type Config struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`

	Server   ServerConfig   `mapstructure:"server"`
	Presence PresenceConfig `mapstructure:"presence"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// PresenceConfig controls the liveness window and the default leaderboard
// size.
type PresenceConfig struct {
	Window           time.Duration `mapstructure:"window"`
	LeaderboardLimit int           `mapstructure:"leaderboard_limit"`
}

// StorageConfig selects and parameterizes the rider store backend.
type StorageConfig struct {
	// Driver is one of "memory", "sqlite", "redis".
	Driver string      `mapstructure:"driver"`
	Path   string      `mapstructure:"path"` // sqlite database file
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds connection settings for the redis driver.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AdminConfig gates destructive development operations.
type AdminConfig struct {
	// EnableReset exposes GET /reset, which wipes every rider record.
	// Off unless explicitly enabled for a trusted environment.
	EnableReset bool `mapstructure:"enable_reset"`
}

// NewDefaultConfig returns a Config populated with the defaults, without
// touching files or the environment. Used by tests and as the baseline for
// Load.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Presence: PresenceConfig{
			Window:           60 * time.Second,
			LeaderboardLimit: 5,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "ski_hud.db",
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Admin: AdminConfig{
			EnableReset: false,
		},
	}
}

// Load reads configuration from configFile (or a config.yaml found in the
// working directory or config/) and the environment, applying defaults for
// everything left unset.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("SKIHUD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	defaults := NewDefaultConfig()
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("server.read_timeout", defaults.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", defaults.Server.WriteTimeout)
	v.SetDefault("presence.window", defaults.Presence.Window)
	v.SetDefault("presence.leaderboard_limit", defaults.Presence.LeaderboardLimit)
	v.SetDefault("storage.driver", defaults.Storage.Driver)
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("storage.redis.addr", defaults.Storage.Redis.Addr)
	v.SetDefault("admin.enable_reset", defaults.Admin.EnableReset)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine; env vars and defaults carry it.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	switch cfg.Storage.Driver {
	case "memory", "sqlite", "redis":
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if cfg.Presence.Window <= 0 {
		return nil, errors.New("presence.window must be positive")
	}

	return &cfg, nil
}

// bindEnvVars explicitly binds every config key so env vars map onto struct
// fields even when no config file exists.
func bindEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"presence.window",
		"presence.leaderboard_limit",
		"storage.driver",
		"storage.path",
		"storage.redis.addr",
		"storage.redis.password",
		"storage.redis.db",
		"admin.enable_reset",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}
