// Package config loads run configuration from surge.yaml, SURGE_* environment
// variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides (SURGE_USERS, SURGE_PERCENTILES_P3, ...).
const EnvPrefix = "SURGE"

// Percentiles are the thresholds percentile1..percentile4 resolve to.
type Percentiles struct {
	P1 float64 `mapstructure:"p1"`
	P2 float64 `mapstructure:"p2"`
	P3 float64 `mapstructure:"p3"`
	P4 float64 `mapstructure:"p4"`
}

// DefaultPercentiles returns 50/75/95/99.
func DefaultPercentiles() Percentiles {
	return Percentiles{P1: 50, P2: 75, P3: 95, P4: 99}
}

// Config is the process-wide run configuration.
type Config struct {
	Percentiles Percentiles   `mapstructure:"percentiles"`
	Users       int           `mapstructure:"users"`
	Duration    time.Duration `mapstructure:"duration"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Database    string        `mapstructure:"database"`
	LogLevel    string        `mapstructure:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Percentiles: DefaultPercentiles(),
		Users:       1,
		Timeout:     10 * time.Second,
		LogLevel:    "info",
	}
}

// SetDefaults registers Default() on v so that Unmarshal fills unset keys.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("percentiles.p1", d.Percentiles.P1)
	v.SetDefault("percentiles.p2", d.Percentiles.P2)
	v.SetDefault("percentiles.p3", d.Percentiles.P3)
	v.SetDefault("percentiles.p4", d.Percentiles.P4)
	v.SetDefault("users", d.Users)
	v.SetDefault("duration", d.Duration)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("database", d.Database)
	v.SetDefault("log_level", d.LogLevel)
}

// New returns a viper instance with defaults and environment binding set up.
// If file is empty, surge.yaml is searched in the current directory.
func New(file string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("surge")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (if any) and environment into a Config.
// A missing default config file is not an error; a missing explicit one is.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
