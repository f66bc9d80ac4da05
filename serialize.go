package hvm

import (
	"context"
	"fmt"

	"github.com/hvm-interop/hvm-go/domain/entities"
	herrors "github.com/hvm-interop/hvm-go/domain/errors"
	"github.com/hvm-interop/hvm-go/domain/ports"
)

// vecHandle owns a native byte vector produced by book_serialize.
type vecHandle struct {
	engine *Engine
	ptr    ports.Ptr
}

func (v *vecHandle) length(ctx context.Context) uint64 {
	return v.engine.boundary.VecGetLength(ctx, v.ptr)
}

// copyTo copies the vector into dst and checks the engine copied want bytes.
func (v *vecHandle) copyTo(ctx context.Context, dst []byte, want uint64) error {
	if want == 0 {
		return nil
	}
	if got := v.engine.boundary.VecCopy(ctx, v.ptr, dst); got != want {
		return fmt.Errorf("vec_copy: copied %d of %d bytes", got, want)
	}
	return nil
}

func (v *vecHandle) release(ctx context.Context) {
	if v.ptr == ports.Null {
		return
	}
	v.engine.boundary.FreeVec(ctx, v.ptr)
	v.ptr = ports.Null
	v.engine.track(entities.ResourceVec, entities.EventReleased)
}

func (e *Engine) serialize(ctx context.Context, book ports.Ptr) (*vecHandle, error) {
	var errOut ports.Ptr
	vec := &vecHandle{engine: e, ptr: e.boundary.BookSerialize(ctx, book, &errOut)}
	if vec.ptr != ports.Null {
		e.track(entities.ResourceVec, entities.EventAllocated)
	}

	if err := e.checkErr(ctx, "book_serialize", errOut); err != nil {
		vec.release(ctx)
		return nil, err
	}
	if vec.ptr == ports.Null {
		return nil, &herrors.InteropError{Op: "book_serialize", Message: "engine returned no buffer"}
	}
	return vec, nil
}

// SerializeTo copies the program's binary encoding into buf.
//
// When buf is shorter than the encoding it returns written == 0 and
// ok == false with a nil error, so the caller can retry with a buffer of
// SerializedLen bytes. Otherwise it returns the encoding's length and true.
func (b *Book) SerializeTo(ctx context.Context, buf []byte) (written uint64, ok bool, err error) {
	err = b.with("Book.SerializeTo", func(ptr ports.Ptr) error {
		vec, err := b.engine.serialize(ctx, ptr)
		if err != nil {
			return err
		}
		defer vec.release(ctx)

		n := vec.length(ctx)
		if uint64(len(buf)) < n {
			return nil
		}
		if err := vec.copyTo(ctx, buf, n); err != nil {
			return err
		}
		written, ok = n, true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return written, ok, nil
}

// Serialize returns the program's binary encoding in a freshly sized slice.
func (b *Book) Serialize(ctx context.Context) ([]byte, error) {
	var out []byte
	err := b.with("Book.Serialize", func(ptr ports.Ptr) error {
		vec, err := b.engine.serialize(ctx, ptr)
		if err != nil {
			return err
		}
		defer vec.release(ctx)

		n := vec.length(ctx)
		buf := make([]byte, n)
		if err := vec.copyTo(ctx, buf, n); err != nil {
			return err
		}
		out = buf
		return nil
	})
	return out, err
}

// SerializedLen returns the size of the program's binary encoding.
func (b *Book) SerializedLen(ctx context.Context) (uint64, error) {
	var n uint64
	err := b.with("Book.SerializedLen", func(ptr ports.Ptr) error {
		vec, err := b.engine.serialize(ctx, ptr)
		if err != nil {
			return err
		}
		defer vec.release(ctx)

		n = vec.length(ctx)
		return nil
	})
	return n, err
}
