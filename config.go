package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"ibrox-analytics/stats"
)

// Config file and environment defaults.
const (
	DefaultConfigFile = "ibrox.yaml"
	DefaultEnvFile    = ".env"
	DefaultDataFile   = "rangers_matches.csv"
	DefaultDatabase   = "ibrox.db"
	DefaultPort       = 8080
	envPrefix         = "IBROX_"
)

// Config holds everything the dashboard and the CLI read from ibrox.yaml,
// the environment and flags.
type Config struct {
	DataFile        string        `koanf:"data_file"`
	Database        string        `koanf:"database"`
	Port            int           `koanf:"port"`
	AdminPassword   string        `koanf:"admin_password"`
	SessionSecret   string        `koanf:"session_secret"`
	MomentumWindow  int           `koanf:"momentum_window"`
	MinPartnerGames int           `koanf:"min_partner_games"`
	TopTeammates    int           `koanf:"top_teammates"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	Watch           bool          `koanf:"watch"`
	Verbose         bool          `koanf:"verbose"`

	// Default filters for CLI reports.
	Season      string `koanf:"season"`
	Competition string `koanf:"competition"`
}

// StatsOptions returns the engine options this config selects.
func (c *Config) StatsOptions() stats.Options {
	opts := stats.DefaultOptions()
	opts.MomentumWindow = c.MomentumWindow
	opts.MinPartnerGames = c.MinPartnerGames
	opts.TopTeammates = c.TopTeammates
	return opts
}

// Filter returns the configured season/competition filter.
func (c *Config) Filter() stats.Filter {
	return stats.Filter{Season: c.Season, Competition: c.Competition}
}

// Validate checks ranges and required values.
func (c *Config) Validate() error {
	var errs []error
	if c.DataFile == "" {
		errs = append(errs, errors.New("data_file is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.MomentumWindow < 1 || c.MomentumWindow > len(stats.MomentumWeights) {
		errs = append(errs, fmt.Errorf("momentum_window must be between 1 and %d", len(stats.MomentumWeights)))
	}
	if c.MinPartnerGames < 0 {
		errs = append(errs, errors.New("min_partner_games must not be negative"))
	}
	if c.TopTeammates < 1 {
		errs = append(errs, errors.New("top_teammates must be at least 1"))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("cache_ttl must not be negative"))
	}
	return errors.Join(errs...)
}

func defaultConfigMap() map[string]interface{} {
	return map[string]interface{}{
		"data_file":         DefaultDataFile,
		"database":          DefaultDatabase,
		"port":              DefaultPort,
		"admin_password":    "",
		"session_secret":    "",
		"momentum_window":   stats.DefaultMomentumWindow,
		"min_partner_games": stats.DefaultMinPartnerGames,
		"top_teammates":     10,
		"cache_ttl":         "10m",
		"watch":             true,
		"verbose":           false,
		"season":            "",
		"competition":       "",
	}
}

// LoadConfig builds the config. Precedence, lowest first: defaults, the
// yaml file, .env, IBROX_* environment variables, explicitly set flags.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultConfigMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := cfgFile != ""
	if cfgFile == "" {
		cfgFile = DefaultConfigFile
	}
	if _, err := os.Stat(cfgFile); err == nil {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", cfgFile, err)
	}

	// Variables already set in the environment win over .env.
	if _, err := os.Stat(DefaultEnvFile); err == nil {
		if err := godotenv.Load(DefaultEnvFile); err != nil {
			return nil, fmt.Errorf("error reading %s: %w", DefaultEnvFile, err)
		}
	}

	// IBROX_ADMIN_PASSWORD -> admin_password
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if key == "data" {
				key = "data_file"
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = hex.EncodeToString(securecookie.GenerateRandomKey(32))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// newLogger returns the process logger.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

type (
	configKey struct{}
	loggerKey struct{}
)

// getConfig retrieves the config stored by the root command.
func getConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	cfg, err := LoadConfig("", nil)
	if err != nil {
		return &Config{DataFile: DefaultDataFile, Database: DefaultDatabase, Port: DefaultPort}
	}
	return cfg
}

// getLogger retrieves the logger stored by the root command.
func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
