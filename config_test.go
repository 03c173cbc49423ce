package main

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so no ibrox.yaml or .env
// from the working tree is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(name, []byte(content), 0o600))
}

func TestLoadConfig_Defaults(t *testing.T) {
	inTempDir(t)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDataFile, cfg.DataFile)
	assert.Equal(t, DefaultDatabase, cfg.Database)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, 5, cfg.MomentumWindow)
	assert.Equal(t, 5, cfg.MinPartnerGames)
	assert.Equal(t, 10, cfg.TopTeammates)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.Watch)
	assert.Empty(t, cfg.AdminPassword)
	assert.Len(t, cfg.SessionSecret, 64, "a random secret is generated")
}

func TestLoadConfig_Precedence(t *testing.T) {
	inTempDir(t)
	writeFile(t, DefaultConfigFile, `
data_file: from-yaml.csv
port: 9000
cache_ttl: 30s
momentum_window: 3
admin_password: yaml-secret
`)
	writeFile(t, DefaultEnvFile, "IBROX_TOP_TEAMMATES=4\nIBROX_ADMIN_PASSWORD=dotenv-secret\n")
	t.Setenv("IBROX_PORT", "9100")
	t.Setenv("IBROX_ADMIN_PASSWORD", "env-secret")
	t.Cleanup(func() { _ = os.Unsetenv("IBROX_TOP_TEAMMATES") })

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("data", "", "")
	flags.Int("port", DefaultPort, "")
	flags.Bool("watch", true, "")
	require.NoError(t, flags.Parse([]string{"--data", "from-flag.csv", "--watch=false"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "from-flag.csv", cfg.DataFile, "flag beats yaml")
	assert.Equal(t, 9100, cfg.Port, "env beats yaml, unset flag is ignored")
	assert.Equal(t, "env-secret", cfg.AdminPassword, "process env beats .env")
	assert.Equal(t, 4, cfg.TopTeammates, ".env is loaded")
	assert.Equal(t, 3, cfg.MomentumWindow)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.False(t, cfg.Watch)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("explicit config file missing", func(t *testing.T) {
		inTempDir(t)
		_, err := LoadConfig("missing.yaml", nil)
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		inTempDir(t)
		writeFile(t, "bad.yaml", "port: [1, 2\n")
		_, err := LoadConfig("bad.yaml", nil)
		assert.ErrorContains(t, err, "bad.yaml")
	})

	t.Run("validation", func(t *testing.T) {
		inTempDir(t)
		t.Setenv("IBROX_MOMENTUM_WINDOW", "9")
		_, err := LoadConfig("", nil)
		assert.ErrorContains(t, err, "momentum_window")
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			DataFile:        "m.csv",
			Port:            8080,
			MomentumWindow:  5,
			MinPartnerGames: 5,
			TopTeammates:    10,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero cache ttl disables caching", func(c *Config) { c.CacheTTL = 0 }, ""},
		{"no data file", func(c *Config) { c.DataFile = "" }, "data_file is required"},
		{"port too high", func(c *Config) { c.Port = 70000 }, "port 70000 out of range"},
		{"window too small", func(c *Config) { c.MomentumWindow = 0 }, "momentum_window"},
		{"window too large", func(c *Config) { c.MomentumWindow = 6 }, "momentum_window"},
		{"negative partner games", func(c *Config) { c.MinPartnerGames = -1 }, "min_partner_games"},
		{"no teammates", func(c *Config) { c.TopTeammates = 0 }, "top_teammates"},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, "cache_ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_StatsOptions(t *testing.T) {
	c := Config{MomentumWindow: 3, MinPartnerGames: 2, TopTeammates: 7, Season: "2024/25"}

	opts := c.StatsOptions()
	assert.Equal(t, 3, opts.MomentumWindow)
	assert.Equal(t, 2, opts.MinPartnerGames)
	assert.Equal(t, 7, opts.TopTeammates)
	assert.Equal(t, "2024/25", c.Filter().Season)
	assert.Empty(t, c.Filter().Competition)
}
