// Package config provides configuration management for the SWMM toolbox.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/swmm-toolbox/pkg/compression"
	apperrors "github.com/swmm-toolbox/pkg/errors"
)

// EnvPrefix prefixes environment overrides, e.g. SWMMTOOLBOX_OUTPUT_TABLEFMT.
const EnvPrefix = "SWMMTOOLBOX"

// Config holds all configuration for the application.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Output   OutputConfig   `mapstructure:"output"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"` // empty means stderr
}

// OutputConfig holds rendering defaults for table output.
type OutputConfig struct {
	TableFormat string `mapstructure:"tablefmt"`
	FloatFormat string `mapstructure:"float_format"` // printf verb, empty means shortest
	Compress    string `mapstructure:"compress"`     // none, gzip or zstd
}

// ExtractConfig tunes series extraction.
type ExtractConfig struct {
	// Workers reads columns concurrently when greater than 1.
	Workers int `mapstructure:"workers"`
}

// StorageConfig holds object storage configuration for remote inputs and uploads.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"` // e.g., "myqcloud.com"
	Scheme    string `mapstructure:"scheme"` // e.g., "https" or "http"
	LocalPath string `mapstructure:"local_path"`
}

// DatabaseConfig holds the connection used by export.
type DatabaseConfig struct {
	Type     string `mapstructure:"type"` // sqlite, mysql or postgres
	Path     string `mapstructure:"path"` // sqlite file
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
}

// Load reads configuration from the specified file path. Without a path it
// searches ".", "./configs" and "/etc/swmmtoolbox" for config.yaml; a
// missing file leaves the defaults in place.
func Load(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/swmmtoolbox")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, apperrors.Wrap(apperrors.CodeConfigError, "failed to read config file", err)
		}
		if configPath != "" {
			return nil, apperrors.Wrap(apperrors.CodeConfigError, fmt.Sprintf("config file %s not found", configPath), err)
		}
	}

	return unmarshal(v)
}

// LoadFromReader loads configuration from raw content (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := newViper()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfigError, "failed to read config", err)
	}
	return unmarshal(v)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, err := unmarshal(newViper())
	if err != nil {
		panic(err)
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfigError, "failed to unmarshal config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "")

	v.SetDefault("output.tablefmt", "csv_nos")
	v.SetDefault("output.float_format", "")
	v.SetDefault("output.compress", "none")

	v.SetDefault("extract.workers", 1)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./storage")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.secret_id", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.domain", "")
	v.SetDefault("storage.scheme", "https")

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "swmmtoolbox.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.database", "swmmtoolbox")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.max_conns", 10)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := compression.ParseType(c.Output.Compress); err != nil {
		return apperrors.Wrap(apperrors.CodeConfigError, "invalid output.compress", err)
	}

	if c.Extract.Workers < 0 {
		return apperrors.Newf(apperrors.CodeConfigError, "extract.workers must not be negative: %d", c.Extract.Workers)
	}

	switch c.Storage.Type {
	case "local", "cos":
	default:
		return apperrors.Newf(apperrors.CodeConfigError, "unsupported storage type: %s", c.Storage.Type)
	}

	switch c.Database.Type {
	case "sqlite":
		if c.Database.Path == "" {
			return apperrors.New(apperrors.CodeConfigError, "database path is required for sqlite")
		}
	case "mysql", "postgres", "postgresql":
		if c.Database.Host == "" {
			return apperrors.New(apperrors.CodeConfigError, "database host is required")
		}
	default:
		return apperrors.Newf(apperrors.CodeConfigError, "unsupported database type: %s", c.Database.Type)
	}

	return nil
}
