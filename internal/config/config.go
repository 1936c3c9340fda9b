package config

import (
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/mutker/diagctl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel      = "info"
	defaultOutputDir     = "diagnostics"
	defaultHistoryDB     = "/var/lib/diagctl/history.db"
	defaultSmartCacheTTL = 300 // seconds
	defaultUploadTimeout = 10  // seconds
)

type Config struct {
	OutputDir      string `mapstructure:"output_dir"`
	ServerEndpoint string `mapstructure:"server_endpoint"`
	LogLevel       string `mapstructure:"log_level"`
	Verbose        bool   `mapstructure:"verbose"`
	Debug          bool   `mapstructure:"debug"`
	History        bool   `mapstructure:"history"`
	HistoryDB      string `mapstructure:"history_db"`
	SmartCacheTTL  int    `mapstructure:"smart_cache_ttl"`
	UploadTimeout  int    `mapstructure:"upload_timeout"`
}

// Load reads configuration from the config file, environment and the
// given flag set, in increasing order of precedence. A nil flag set is
// allowed. The config file path can be overridden with DIAGCTL_CONFIG.
func Load(flags *pflag.FlagSet) (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("output_dir", defaultOutputDir)
	v.SetDefault("server_endpoint", "")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("history", false)
	v.SetDefault("history_db", defaultHistoryDB)
	v.SetDefault("smart_cache_ttl", defaultSmartCacheTTL)
	v.SetDefault("upload_timeout", defaultUploadTimeout)

	v.SetEnvPrefix("DIAGCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("DIAGCTL_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	} else {
		v.SetConfigName("diagctl")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		if home, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "diagctl"))
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, bindErr)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the loaded configuration for invalid values.
func (c *Config) Validate() error {
	errFactory := errors.New()

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.SmartCacheTTL < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "smart_cache_ttl must not be negative")
	}

	if c.UploadTimeout <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "upload_timeout must be positive")
	}

	if c.History && c.HistoryDB == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "history enabled without history_db")
	}

	return nil
}
