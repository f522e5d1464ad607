// Package config loads the settings of the progressive command from defaults, an optional
// configuration file and PROGRESSIVE_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sif/progressive/logging"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables which override configuration keys
const EnvPrefix = "PROGRESSIVE"

// Config holds the settings shared by the progressive subcommands
type Config struct {
	LogLevel         string        `mapstructure:"log_level"`         // LogLevel is the minimum level of logged messages
	DataDir          string        `mapstructure:"data_dir"`          // DataDir is a dataset directory containing a metadata.json
	CacheSize        int           `mapstructure:"cache_size"`        // CacheSize is the number of loaded partitions retained in memory
	NumWorkers       int           `mapstructure:"num_workers"`       // NumWorkers bounds the number of concurrently executing Jobs
	Workers          []string      `mapstructure:"workers"`           // Workers are the addresses of remote workers. Jobs run locally if empty.
	RPCTimeout       time.Duration `mapstructure:"rpc_timeout"`       // RPCTimeout bounds a single remote Job
	Host             string        `mapstructure:"host"`              // Host is the address a worker binds to
	Port             int           `mapstructure:"port"`              // Port is the port a worker binds to
	MetricsAddr      string        `mapstructure:"metrics_addr"`      // MetricsAddr serves Prometheus metrics, if non-empty
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"` // SnapshotInterval is the period between progress reports
}

// New creates a viper instance carrying the defaults of every key, with environment overrides enabled
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("data_dir", ".")
	v.SetDefault("cache_size", 64)
	v.SetDefault("num_workers", 0)
	v.SetDefault("workers", []string{})
	v.SetDefault("rpc_timeout", time.Minute)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 1643)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("snapshot_interval", time.Second)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file at path, if non-empty, and decodes the settings of v
func Load(v *viper.Viper, path string) (*Config, error) {
	if len(path) > 0 {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding configuration: %w", err)
	}
	if cfg.CacheSize == 0 {
		return nil, fmt.Errorf("cache_size must be non-zero; use a negative value to disable caching")
	}
	if cfg.SnapshotInterval <= 0 {
		return nil, fmt.Errorf("snapshot_interval must be positive")
	}
	return &cfg, nil
}

// Logger creates a Logger for source at the configured level
func (c *Config) Logger(source string) *logging.Logger {
	return logging.New(source, logging.ParseLogLevel(c.LogLevel))
}
