// Package config resolves the application settings from .env, environment
// variables, command line flags and defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrMissingToken is returned by Validate when no Telegram token is configured.
var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")

type Config struct {
	Telegram struct {
		Token string `mapstructure:"token"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"telegram"`
	Database struct {
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	Catalog struct {
		Path  string `mapstructure:"path"`
		Sheet string `mapstructure:"sheet"`
	} `mapstructure:"catalog"`
	Bot struct {
		ClosingAsset string `mapstructure:"closing_asset"`
		Workers      int    `mapstructure:"workers"`
	} `mapstructure:"bot"`
	Session struct {
		TTL           time.Duration `mapstructure:"ttl"`
		SweepInterval time.Duration `mapstructure:"sweep_interval"`
	} `mapstructure:"session"`
	HTTP struct {
		Addr           string   `mapstructure:"addr"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"http"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// setting ties a config key to its environment variable, default and flag
type setting struct {
	key  string
	env  string
	def  interface{}
	flag string
}

var settings = []setting{
	{key: "telegram.token", env: "TELEGRAM_BOT_TOKEN", flag: "token"},
	{key: "telegram.debug", env: "TELEGRAM_DEBUG", def: false, flag: "debug"},
	{key: "database.driver", env: "DB_DRIVER", def: "sqlite3", flag: "db-driver"},
	{key: "database.dsn", env: "DB_DSN", def: filepath.Join("data", "stats_by_saying.db"), flag: "db-dsn"},
	{key: "catalog.path", env: "SAYINGS_FILE", def: filepath.Join("data", "sayings.xlsx"), flag: "sayings"},
	{key: "catalog.sheet", env: "SAYINGS_SHEET", def: "", flag: "sheet"},
	{key: "bot.closing_asset", env: "CLOSING_ASSET", def: filepath.Join("data", "goodbye.jpg"), flag: "closing-asset"},
	{key: "bot.workers", env: "BOT_WORKERS", def: 8, flag: "workers"},
	{key: "session.ttl", env: "SESSION_TTL", def: 24 * time.Hour, flag: "session-ttl"},
	{key: "session.sweep_interval", env: "SESSION_SWEEP_INTERVAL", def: 10 * time.Minute},
	{key: "http.addr", env: "HTTP_ADDR", def: "", flag: "http-addr"},
	{key: "http.allowed_origins", env: "HTTP_ALLOWED_ORIGINS", def: []string{"*"}},
	{key: "log.level", env: "LOG_LEVEL", def: "info", flag: "log-level"},
	{key: "log.format", env: "LOG_FORMAT", def: "text", flag: "log-format"},
}

// Load reads .env from the working directory (if present) and resolves every
// setting. Flags take precedence over the environment, which takes precedence
// over the defaults. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %v", err)
	}

	v := viper.New()
	for _, s := range settings {
		if s.def != nil {
			v.SetDefault(s.key, s.def)
		}
		if err := v.BindEnv(s.key, s.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %v", s.env, err)
		}
		if flags == nil || s.flag == "" {
			continue
		}
		if f := flags.Lookup(s.flag); f != nil {
			if err := v.BindPFlag(s.key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %v", s.flag, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %v", err)
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	cfg.HTTP.AllowedOrigins = trimAll(cfg.HTTP.AllowedOrigins)

	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings required to run the bot
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// check rejects values no command can work with
func (c *Config) check() error {
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Bot.Workers <= 0 {
		return fmt.Errorf("bot workers must be positive, got %d", c.Bot.Workers)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.Session.TTL)
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session sweep interval must be positive, got %s", c.Session.SweepInterval)
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
