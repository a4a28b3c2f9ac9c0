package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range settings {
		t.Setenv(s.env, "")
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.Telegram.Token)
	assert.False(t, cfg.Telegram.Debug)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, filepath.Join("data", "stats_by_saying.db"), cfg.Database.DSN)
	assert.Equal(t, filepath.Join("data", "sayings.xlsx"), cfg.Catalog.Path)
	assert.Empty(t, cfg.Catalog.Sheet)
	assert.Equal(t, filepath.Join("data", "goodbye.jpg"), cfg.Bot.ClosingAsset)
	assert.Equal(t, 8, cfg.Bot.Workers)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Session.SweepInterval)
	assert.Empty(t, cfg.HTTP.Addr)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	assert.ErrorIs(t, cfg.Validate(), ErrMissingToken)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_DEBUG", "true")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "postgres://bot@localhost/sayings?sslmode=disable")
	t.Setenv("BOT_WORKERS", "3")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.True(t, cfg.Telegram.Debug)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://bot@localhost/sayings?sslmode=disable", cfg.Database.DSN)
	assert.Equal(t, 3, cfg.Bot.Workers)
	assert.Equal(t, 90*time.Minute, cfg.Session.TTL)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SAYINGS_FILE", "from-env.xlsx")
	t.Setenv("LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("sayings", "", "")
	flags.String("log-level", "", "")
	flags.Int("workers", 0, "")
	require.NoError(t, flags.Parse([]string{"--sayings", "from-flag.csv", "--workers", "2"}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.csv", cfg.Catalog.Path)
	assert.Equal(t, 2, cfg.Bot.Workers)
	assert.Equal(t, "warn", cfg.Log.Level, "unset flag does not shadow the environment")
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv("TELEGRAM_BOT_TOKEN"))
	require.NoError(t, os.Unsetenv("SAYINGS_SHEET"))
	t.Cleanup(func() {
		os.Unsetenv("TELEGRAM_BOT_TOKEN")
		os.Unsetenv("SAYINGS_SHEET")
	})

	dir := t.TempDir()
	content := "TELEGRAM_BOT_TOKEN=from-dotenv\nSAYINGS_SHEET=Поговорки\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0644))
	chdir(t, dir)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Telegram.Token)
	assert.Equal(t, "Поговорки", cfg.Catalog.Sheet)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"unknown driver", "DB_DRIVER", "mysql"},
		{"zero workers", "BOT_WORKERS", "0"},
		{"negative ttl", "SESSION_TTL", "-1h"},
		{"malformed ttl", "SESSION_TTL", "soon"},
		{"zero sweep interval", "SESSION_SWEEP_INTERVAL", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.env, tt.val)

			_, err := Load(nil)
			assert.Error(t, err)
		})
	}
}
