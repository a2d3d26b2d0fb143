package main

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opentoys/gosm3/filex"
)

// Config controls how digests are computed and printed.
type Config struct {
	Case      string `mapstructure:"case"`
	ChunkSize int    `mapstructure:"chunk_size"`
	Workers   int    `mapstructure:"workers"`
	LogLevel  string `mapstructure:"log_level"`
}

var errConfig = errors.New("invalid config")

func setDefaults(v *viper.Viper) {
	v.SetDefault("case", "lower")
	v.SetDefault("chunk_size", filex.DefaultChunkSize)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("log_level", "warn")
}

// loadConfig merges defaults, the optional config file, SM3_* environment
// variables and the command's flags, later sources winning.
func loadConfig(cmd *cobra.Command, path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("SM3")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"chunk_size": "chunk-size",
		"workers":    "workers",
		"log_level":  "log-level",
	} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	c.Case = strings.ToLower(strings.TrimSpace(c.Case))
	if c.Case != "lower" && c.Case != "upper" {
		return fmt.Errorf("%w: case must be lower or upper, got %q", errConfig, c.Case)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", errConfig, c.Workers)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", errConfig, c.ChunkSize)
	}
	return nil
}
