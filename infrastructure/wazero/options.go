package wazero

import (
	"io"
	"log/slog"

	"github.com/tetratelabs/wazero"
)

// Config holds configuration for the wazero backend.
type Config struct {
	// HostModuleName is the name the guest imports log_message from
	// (default: "hvm_host").
	HostModuleName string

	// ModuleName is the instance name of the engine module (default: "hvm").
	ModuleName string

	// MaxLogSize limits the size of a single guest log line. Default is 64KiB.
	MaxLogSize uint32

	// Logger receives guest log lines and backend diagnostics.
	Logger *slog.Logger

	// Stderr additionally receives the guest's WASI stderr.
	Stderr io.Writer

	// MaxStderrSize limits how much guest stderr is attached to the error
	// reported for a trapped call. Default is 4KiB.
	MaxStderrSize uint32

	// RuntimeConfig is passed to wazero.NewRuntimeWithConfig.
	RuntimeConfig wazero.RuntimeConfig
}

// Option configures the backend.
type Option func(*Config)

// DefaultMaxLogSize is the default limit for a guest log line.
const DefaultMaxLogSize = 64 * 1024

func defaultConfig() Config {
	return Config{
		HostModuleName: "hvm_host",
		ModuleName:     "hvm",
		MaxLogSize:     DefaultMaxLogSize,
		MaxStderrSize:  DefaultMaxStderrSize,
		Logger:         slog.Default(),
		RuntimeConfig:  wazero.NewRuntimeConfig(),
	}
}

// WithHostModuleName sets the host module name (default: "hvm_host").
func WithHostModuleName(name string) Option {
	return func(c *Config) {
		c.HostModuleName = name
	}
}

// WithModuleName sets the engine's module instance name.
func WithModuleName(name string) Option {
	return func(c *Config) {
		c.ModuleName = name
	}
}

// WithMaxLogSize sets the maximum guest log line size.
func WithMaxLogSize(size uint32) Option {
	return func(c *Config) {
		c.MaxLogSize = size
	}
}

// WithLogger sets the logger for guest log lines and diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithMaxStderrSize sets how much guest stderr is kept per call.
func WithMaxStderrSize(size uint32) Option {
	return func(c *Config) {
		c.MaxStderrSize = size
	}
}

// WithStderr routes the guest's WASI stderr to w.
func WithStderr(w io.Writer) Option {
	return func(c *Config) {
		c.Stderr = w
	}
}

// WithRuntimeConfig replaces the wazero runtime configuration, for example
// to use the interpreter or a compilation cache.
func WithRuntimeConfig(rc wazero.RuntimeConfig) Option {
	return func(c *Config) {
		c.RuntimeConfig = rc
	}
}
