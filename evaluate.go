package hvm

import (
	"context"
	"fmt"

	"github.com/hvm-interop/hvm-go/domain/entities"
	herrors "github.com/hvm-interop/hvm-go/domain/errors"
	"github.com/hvm-interop/hvm-go/domain/ports"
)

type evaluateConfig struct {
	runtime entities.RuntimeType
	memDump bool
}

func defaultEvaluateConfig() evaluateConfig {
	return evaluateConfig{runtime: entities.RuntimeRust}
}

// EvaluateOption configures a single evaluation.
type EvaluateOption func(*evaluateConfig)

// WithRuntime selects the native runtime. Values the engine does not know are
// passed through and rejected by the engine itself.
func WithRuntime(rt entities.RuntimeType) EvaluateOption {
	return func(c *evaluateConfig) {
		c.runtime = rt
	}
}

// WithMemDump requests the engine's memory dump in the result.
func WithMemDump(enabled bool) EvaluateOption {
	return func(c *evaluateConfig) {
		c.memDump = enabled
	}
}

// Evaluate reduces the program's @main definition. The call blocks until the
// engine returns and cannot be interrupted.
func (b *Book) Evaluate(ctx context.Context, opts ...EvaluateOption) (entities.EvaluationResult, error) {
	cfg := defaultEvaluateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var result entities.EvaluationResult
	err := b.with("Book.Evaluate", func(ptr ports.Ptr) error {
		var err error
		result, err = b.engine.evaluate(ctx, ptr, cfg)
		return err
	})
	return result, err
}

func (e *Engine) evaluate(ctx context.Context, book ports.Ptr, cfg evaluateConfig) (entities.EvaluationResult, error) {
	var memDump uint32
	if cfg.memDump {
		memDump = 1
	}

	var errOut ports.Ptr
	raw := e.boundary.BookEvaluate(ctx, book, cfg.runtime, memDump, &errOut)
	if raw != ports.Null {
		e.track(entities.ResourceEvaluationResult, entities.EventAllocated)
		defer func() {
			e.boundary.FreeEvaluationResult(ctx, raw)
			e.track(entities.ResourceEvaluationResult, entities.EventReleased)
		}()
	}

	if err := e.checkErr(ctx, "book_evaluate", errOut); err != nil {
		return entities.EvaluationResult{}, err
	}
	if raw == ports.Null {
		return entities.EvaluationResult{}, &herrors.InteropError{Op: "book_evaluate", Message: "engine returned no evaluation result"}
	}

	return e.copyEvaluationResult(raw)
}

// copyEvaluationResult builds the host-owned result. The record's strings
// belong to the record and are freed with it, not individually.
func (e *Engine) copyEvaluationResult(raw ports.Ptr) (entities.EvaluationResult, error) {
	rec, ok := e.boundary.ReadEvaluationResult(raw)
	if !ok {
		return entities.EvaluationResult{}, fmt.Errorf("book_evaluate: evaluation record at %#x is not readable", uintptr(raw))
	}
	return entities.EvaluationResult{
		Iterations: rec.Iterations,
		Duration:   entities.DurationFromSeconds(rec.Seconds),
		Result:     decodeCString(e.boundary, ports.Ptr(rec.Result)),
		MemDump:    decodeCString(e.boundary, ports.Ptr(rec.MemDump)),
	}, nil
}
