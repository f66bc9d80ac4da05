// Package cli implements the hvm command.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hvm-interop/hvm-go/infrastructure/metrics"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	MetricsFile string

	// Backend allows overriding how the engine is opened (for testing).
	// If nil, defaults to OpenBackend.
	Backend BackendOpener
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the hvm CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hvm",
		Short: "Run HVM programs from Go",
		Long:  "Parse, evaluate and serialize HVM interaction-net programs through the native engine or its wasm32 build.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewSerializeCommand(opts))
	cmd.AddCommand(NewSamplesCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger writes to w at debug level with --verbose, warn level otherwise.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *RootOptions) openBackend() BackendOpener {
	if o.Backend != nil {
		return o.Backend
	}
	return OpenBackend
}

// observer returns a metrics observer and a flush function writing --metrics-file.
// Both are no-ops without the flag.
func (o *RootOptions) observer(logger *slog.Logger) (*metrics.Observer, func()) {
	if o.MetricsFile == "" {
		return nil, func() {}
	}
	reg := prometheus.NewRegistry()
	observer := metrics.NewObserver(reg)
	return observer, func() {
		if err := prometheus.WriteToTextfile(o.MetricsFile, reg); err != nil {
			logger.Error("failed to write metrics", "path", o.MetricsFile, "error", err)
		}
	}
}
