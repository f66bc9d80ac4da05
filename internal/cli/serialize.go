package cli

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// SerializeOptions holds flags for the serialize command.
type SerializeOptions struct {
	*RootOptions
	runFlags
	Output string
}

// SerializeResult is the JSON payload of the serialize command.
type SerializeResult struct {
	Program string `json:"program"`
	Bytes   uint64 `json:"bytes"`
	Output  string `json:"output,omitempty"`
	Hex     string `json:"hex,omitempty"`
}

func (r SerializeResult) String() string {
	if r.Output != "" {
		return fmt.Sprintf("wrote %d bytes to %s", r.Bytes, r.Output)
	}
	return r.Hex
}

// NewSerializeCommand creates the serialize command.
func NewSerializeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SerializeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serialize",
		Short: "Write a program's binary encoding",
		Long: `Parse a program and write the engine's binary encoding of it.

Without --output the encoding is printed as hex.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSerialize(opts, cmd)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "file to write the encoding to")
	return cmd
}

func runSerialize(opts *SerializeOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	cfg, err := opts.resolve(cmd)
	if err != nil {
		return reportFailure(formatter, "", "invalid run configuration", err)
	}
	name, source, err := loadProgram(cfg)
	if err != nil {
		return reportFailure(formatter, "", "failed to load program", err)
	}

	observer, flush := opts.observer(logger)
	defer flush()

	ctx := commandContext(cmd)
	eng, closeBackend, err := openEngine(ctx, opts.RootOptions, cfg, logger, observer)
	if err != nil {
		return reportFailure(formatter, "", "failed to open engine", err)
	}
	defer closeBackend()

	book, err := eng.Parse(ctx, source)
	if err != nil {
		return reportFailure(formatter, "", "failed to parse program", err)
	}
	defer func() { _ = book.Close() }()

	n, err := book.SerializedLen(ctx)
	if err != nil {
		return reportFailure(formatter, "", "failed to serialize program", err)
	}
	buf := make([]byte, n)
	written, ok, err := book.SerializeTo(ctx, buf)
	if err != nil {
		return reportFailure(formatter, "", "failed to serialize program", err)
	}
	if !ok {
		return reportFailure(formatter, "", "failed to serialize program",
			fmt.Errorf("encoding grew beyond the %d bytes reported", n))
	}
	buf = buf[:written]
	formatter.VerboseLog("Serialized %s: %d bytes", name, written)

	result := SerializeResult{Program: name, Bytes: written}
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, buf, 0o600); err != nil {
			return reportFailure(formatter, "", "failed to write output", err)
		}
		result.Output = opts.Output
	} else {
		result.Hex = hex.EncodeToString(buf)
	}
	return formatter.Success(result)
}
