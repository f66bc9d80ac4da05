package hvm

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/hvm-interop/hvm-go/domain/entities"
	herrors "github.com/hvm-interop/hvm-go/domain/errors"
	"github.com/hvm-interop/hvm-go/domain/ports"
)

// Engine parses programs through a boundary and tracks the native resources
// it hands out. An Engine holds no native state itself and is safe for
// concurrent use when its boundary is.
type Engine struct {
	boundary ports.Boundary
	logger   *slog.Logger
	observer ports.LifecycleObserver
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for resource lifecycle messages.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver registers an observer notified of every allocation and release.
func WithObserver(o ports.LifecycleObserver) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// New creates an Engine over the given boundary.
func New(boundary ports.Boundary, opts ...Option) *Engine {
	if boundary == nil {
		panic(&herrors.MisuseError{Op: "hvm.New", Reason: "boundary is nil"})
	}
	e := &Engine{
		boundary: boundary,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse compiles source into a Book. A parse failure is returned as an
// *errors.InteropError carrying the engine's message, and no Book is created.
func (e *Engine) Parse(ctx context.Context, source string) (*Book, error) {
	if e == nil || e.boundary == nil {
		panic(&herrors.MisuseError{Op: "Engine.Parse", Reason: "engine was not created by hvm.New"})
	}

	var errOut ports.Ptr
	ptr := e.boundary.BookParse(ctx, source, &errOut)
	if ptr != ports.Null {
		e.track(entities.ResourceBook, entities.EventAllocated)
	}

	if err := e.checkErr(ctx, "book_parse", errOut); err != nil {
		if ptr != ports.Null {
			e.freeBook(ctx, ptr)
		}
		return nil, err
	}
	if ptr == ports.Null {
		return nil, &herrors.InteropError{Op: "book_parse", Message: "engine returned no book"}
	}

	b := &Book{engine: e, ptr: ptr}
	runtime.SetFinalizer(b, (*Book).finalize)
	return b, nil
}

func (e *Engine) freeBook(ctx context.Context, ptr ports.Ptr) {
	e.boundary.FreeBook(ctx, ptr)
	e.track(entities.ResourceBook, entities.EventReleased)
}

func (e *Engine) track(kind entities.ResourceKind, typ entities.LifecycleEventType) {
	e.logger.Debug("hvm: native resource", "kind", kind, "event", typ)
	if e.observer != nil {
		e.observer.OnLifecycleEvent(entities.LifecycleEvent{Kind: kind, Type: typ})
	}
}
