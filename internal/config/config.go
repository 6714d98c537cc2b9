// Package config loads the runtime configuration of the command.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/mna/nymphaea/lang/cext"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of the environment variables that override the
// configuration file.
const EnvPrefix = "NYMPHAEA_"

// Config is the runtime configuration.
type Config struct {
	// HeapInitialPages and HeapMaxPages configure the native heap, in pages
	// of 64KiB.
	HeapInitialPages uint32 `yaml:"heap_initial_pages" env:"HEAP_INITIAL_PAGES"`
	HeapMaxPages     uint32 `yaml:"heap_max_pages" env:"HEAP_MAX_PAGES"`

	// MaxCallDepth limits the nesting of builtin calls.
	MaxCallDepth int `yaml:"max_call_depth" env:"MAX_CALL_DEPTH"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	// LogFormat is console or json.
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		HeapInitialPages: 1,
		HeapMaxPages:     256,
		MaxCallDepth:     1000,
		LogLevel:         "warn",
		LogFormat:        "console",
	}
}

// Load returns the configuration from the YAML file at path, if path is not
// empty, with the environment overrides applied on top of it. Unset values
// keep their default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := env.Parse(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("load config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error
	if c.HeapInitialPages == 0 {
		errs = append(errs, errors.New("heap_initial_pages must be at least 1"))
	}
	if c.HeapMaxPages < c.HeapInitialPages {
		errs = append(errs, fmt.Errorf("heap_max_pages (%d) must be at least heap_initial_pages (%d)", c.HeapMaxPages, c.HeapInitialPages))
	}
	if c.HeapMaxPages > cext.MaxPages {
		errs = append(errs, fmt.Errorf("heap_max_pages (%d) must be at most %d", c.HeapMaxPages, cext.MaxPages))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format: invalid format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// NewLogger returns a logger that writes to w at the configured level and
// format.
func (c *Config) NewLogger(w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	var enc zapcore.Encoder
	if c.LogFormat == "json" {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core), nil
}
