package config

import (
	"fmt"
	"os"

	"github.com/hvm-interop/hvm-go/application/validation"
	"github.com/hvm-interop/hvm-go/domain/entities"
	"github.com/hvm-interop/hvm-go/domain/errors"
	"github.com/hvm-interop/hvm-go/domain/ports"
	"github.com/hvm-interop/hvm-go/infrastructure/parser"
)

// loaderConfig holds configuration for the Loader.
type loaderConfig struct {
	parser    ports.ConfigParser
	validator ports.ConfigValidator
	base      entities.RunConfig
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		parser:    parser.NewYamlConfigParser(),
		validator: validation.NewStructValidator(),
		base:      entities.DefaultRunConfig(),
	}
}

// Loader orchestrates the run configuration pipeline: parse on top of the
// defaults, then validate.
type Loader struct {
	config loaderConfig
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithParser sets a custom config parser.
func WithParser(p ports.ConfigParser) LoaderOption {
	return func(c *loaderConfig) {
		c.parser = p
	}
}

// WithValidator sets a custom validator.
func WithValidator(v ports.ConfigValidator) LoaderOption {
	return func(c *loaderConfig) {
		c.validator = v
	}
}

// WithDefaults replaces the configuration that file contents are applied to.
func WithDefaults(base entities.RunConfig) LoaderOption {
	return func(c *loaderConfig) {
		c.base = base
	}
}

// NewLoader creates a new Loader with defaults.
func NewLoader(opts ...LoaderOption) *Loader {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loader{config: cfg}
}

// Load parses raw YAML and validates the result. Passing nil yields the
// validated defaults.
func (l *Loader) Load(raw []byte) (*entities.RunConfig, error) {
	cfg, err := l.config.parser.Parse(raw, l.config.base)
	if err != nil {
		return nil, &errors.ConfigError{Err: err}
	}
	if err := l.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads and loads the file at path.
func (l *Loader) LoadFile(path string) (*entities.RunConfig, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path is chosen by the operator
	if err != nil {
		return nil, &errors.ConfigError{Err: fmt.Errorf("failed to read config: %w", err)}
	}
	return l.Load(raw)
}

// Validate checks an already assembled configuration, for example after
// command-line overrides were applied.
func (l *Loader) Validate(cfg *entities.RunConfig) error {
	if l.config.validator == nil {
		return nil
	}
	if err := l.config.validator.Validate(cfg); err != nil {
		return err
	}
	if _, err := cfg.RuntimeType(); err != nil {
		return &errors.ConfigError{Field: "runtime", Err: err}
	}
	return nil
}
