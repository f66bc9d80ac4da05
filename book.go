package hvm

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/hvm-interop/hvm-go/domain/entities"
	herrors "github.com/hvm-interop/hvm-go/domain/errors"
	"github.com/hvm-interop/hvm-go/domain/ports"
)

// Book is a compiled program owned by the native engine.
//
// A Book is created by Engine.Parse and must not be copied. It is Live until
// Close (or the finalizer) releases it, and Released forever after.
// Operations on one Book are serialized; different Books may be used from
// different goroutines.
type Book struct {
	mu     sync.Mutex
	engine *Engine
	ptr    ports.Ptr
}

// Close releases the native program. It is idempotent and always returns nil.
func (b *Book) Close() error {
	if b == nil || b.engine == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseLocked(context.Background())
	runtime.SetFinalizer(b, nil)
	return nil
}

// Released reports whether the native program has been released. A nil Book
// holds nothing and reports true.
func (b *Book) Released() bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ptr == ports.Null
}

// with runs fn with the book's address while holding the book's lock, so a
// concurrent Close waits for the native call to return.
func (b *Book) with(op string, fn func(ptr ports.Ptr) error) error {
	if b == nil || b.engine == nil {
		panic(&herrors.MisuseError{Op: op, Reason: "book was not created by Engine.Parse"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ptr == ports.Null {
		return fmt.Errorf("%s: %w", op, herrors.ErrReleased)
	}
	err := fn(b.ptr)
	runtime.KeepAlive(b)
	return err
}

func (b *Book) releaseLocked(ctx context.Context) bool {
	if b.ptr == ports.Null {
		return false
	}
	ptr := b.ptr
	b.engine.freeBook(ctx, ptr)
	b.ptr = ports.Null
	return true
}

func (b *Book) finalize() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.releaseLocked(context.Background()) {
		b.engine.track(entities.ResourceBook, entities.EventFinalized)
		b.engine.logger.Warn("hvm: book released by finalizer; call Close to release it deterministically")
	}
}
