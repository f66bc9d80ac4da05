package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	hvm "github.com/hvm-interop/hvm-go"
	"github.com/hvm-interop/hvm-go/domain/entities"
	herrors "github.com/hvm-interop/hvm-go/domain/errors"
	"github.com/hvm-interop/hvm-go/infrastructure/metrics"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	runFlags
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Parse and evaluate a program",
		Long: `Parse a program, evaluate its @main definition and report the result.

The program comes from --source or one of the embedded samples (--sample).
Settings can be read from a YAML file with --config; flags override it.

Example:
  hvm run --sample fib --param N=40 --wasm ./hvm.wasm
  hvm run --backend native --runtime c --source ./prog.hvm --mem-dump`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(opts, cmd)
		},
	}

	opts.bind(cmd)
	return cmd
}

func runProgram(opts *RunOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	cfg, err := opts.resolve(cmd)
	if err != nil {
		return reportFailure(formatter, "", "invalid run configuration", err)
	}
	rt, _ := cfg.RuntimeType()

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	name, source, err := loadProgram(cfg)
	if err != nil {
		return reportFailure(formatter, runID, "failed to load program", err)
	}
	formatter.VerboseLog("Loaded %s (%d bytes)", name, len(source))

	observer, flush := opts.observer(logger)
	defer flush()

	ctx := commandContext(cmd)
	start := time.Now()

	eng, closeBackend, err := openEngine(ctx, opts.RootOptions, cfg, logger, observer)
	if err != nil {
		return reportFailure(formatter, runID, "failed to open engine", err)
	}
	defer closeBackend()

	book, err := eng.Parse(ctx, source)
	if err != nil {
		return reportFailure(formatter, runID, "failed to parse program", err)
	}
	defer func() { _ = book.Close() }()

	result, err := book.Evaluate(ctx, hvm.WithRuntime(rt), hvm.WithMemDump(cfg.MemDump))
	if observer != nil {
		observer.ObserveEvaluation(rt, result, err)
	}
	if err != nil {
		return reportFailure(formatter, runID, "evaluation failed", err)
	}

	size, err := book.SerializedLen(ctx)
	if err != nil {
		return reportFailure(formatter, runID, "failed to serialize program", err)
	}

	end := time.Now()
	meta := entities.NewRunMetadata(start, end).
		WithBackend(cfg.Backend).
		WithRuntime(rt).
		WithSerializedBytes(size)
	report := entities.ReportSuccess(runID, result).WithMetadata(meta)
	report.Timestamp = end

	logger.Info("run complete", "program", name, "iterations", result.Iterations, "duration", result.Duration)

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	return formatter.Success(formatReport(name, report))
}

// openEngine opens the configured backend and wraps it in an Engine. The
// returned function closes the backend.
func openEngine(ctx context.Context, opts *RootOptions, cfg *entities.RunConfig, logger *slog.Logger, observer *metrics.Observer) (*hvm.Engine, func(), error) {
	backend, err := opts.openBackend()(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	engineOpts := []hvm.Option{hvm.WithLogger(logger)}
	if observer != nil {
		engineOpts = append(engineOpts, hvm.WithObserver(observer))
	}

	closeBackend := func() {
		if backend.Close == nil {
			return
		}
		if err := backend.Close(ctx); err != nil {
			logger.Error("error closing backend", "backend", cfg.Backend, "error", err)
		}
	}
	return hvm.New(backend.Boundary, engineOpts...), closeBackend, nil
}

// reportFailure prints err in the configured format and returns the
// matching ExitError.
func reportFailure(formatter *OutputFormatter, runID, message string, err error) error {
	detail := herrors.ToErrorDetail(err)
	var details interface{}
	if runID != "" {
		details = map[string]any{"run_id": runID}
	}
	_ = formatter.Error(detail.Type, detail.Message, details)
	return WrapExitError(exitCodeFor(err), message, err)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// formatReport renders a successful run for --format text. Run identifiers
// and wall-clock timestamps are left to the JSON output.
func formatReport(name string, report entities.RunReport) string {
	var sb strings.Builder
	line := func(label string, value any) {
		fmt.Fprintf(&sb, "%-12s%v\n", label+":", value)
	}

	line("program", name)
	if m := report.Metadata; m != nil {
		line("backend", m.Backend)
		line("runtime", m.Runtime)
	}
	if ev := report.Evaluation; ev != nil {
		line("result", ev.Result)
		line("iterations", ev.Iterations)
		line("duration", ev.Duration)
		line("ips", fmt.Sprintf("%.2f", report.IterationsPerSecond))
	}
	if m := report.Metadata; m != nil {
		line("serialized", fmt.Sprintf("%d bytes", m.SerializedBytes))
	}
	if ev := report.Evaluation; ev != nil && ev.HasMemDump() {
		sb.WriteString("mem dump:\n")
		sb.WriteString(strings.TrimRight(ev.MemDump, "\n"))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
