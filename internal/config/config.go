package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API     APIConfig
	Session SessionConfig
	UI      UIConfig
	Log     LogConfig
	Server  ServerConfig
}

// APIConfig describes how to reach the record-keeping API.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Origin  string
	Timeout time.Duration
}

// SessionConfig holds the simulated identity sent with every request.
type SessionConfig struct {
	UserID string `mapstructure:"user_id"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat string `mapstructure:"date_format"`
	Timezone   string
	StartView  string `mapstructure:"start_view"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Path  string
	Level string
}

// ServerConfig holds settings for the development registry API.
type ServerConfig struct {
	Addr          string
	DatabasePath  string `mapstructure:"database_path"`
	Mock          bool
	RatePerMinute int `mapstructure:"rate_per_minute"`
}

const (
	localAPIBase = "http://localhost:8000"
	proxyPrefix  = "/api"
)

// ResolveBaseURL returns the API base address. An explicit base_url wins;
// otherwise an origin containing "localhost" maps to the local API port and
// anything else is assumed to sit behind a reverse proxy under /api.
func (c APIConfig) ResolveBaseURL() string {
	if base := strings.TrimSpace(c.BaseURL); base != "" {
		return strings.TrimSuffix(base, "/")
	}
	origin := strings.TrimSuffix(strings.TrimSpace(c.Origin), "/")
	if strings.Contains(origin, "localhost") {
		return localAPIBase
	}
	return origin + proxyPrefix
}

func configPath() string {
	if p := os.Getenv("LEGALHUB_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "legalhub", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix LEGALHUB_.
func Load() (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.origin", "http://localhost")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("session.user_id", "lawyer-A-42")
	v.SetDefault("ui.date_format", "2006-01-02")
	v.SetDefault("ui.timezone", "Local")
	v.SetDefault("ui.start_view", "clients")
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "legalhub", "legalhub.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.database_path", filepath.Join(home, ".local", "share", "legalhub", "registry.db"))
	v.SetDefault("server.mock", false)
	v.SetDefault("server.rate_per_minute", 120)

	v.SetConfigType("toml")
	if p := os.Getenv("LEGALHUB_CONFIG"); p != "" {
		v.SetConfigFile(p)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "legalhub"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("LEGALHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// the file is optional; a malformed one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if strings.TrimSpace(c.Session.UserID) == "" {
		return Config{}, fmt.Errorf("config: session.user_id must not be empty")
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.origin", cfg.API.Origin)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("session.user_id", cfg.Session.UserID)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("ui.start_view", cfg.UI.StartView)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("server.database_path", cfg.Server.DatabasePath)
	v.Set("server.mock", cfg.Server.Mock)
	v.Set("server.rate_per_minute", cfg.Server.RatePerMinute)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
