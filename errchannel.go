package hvm

import (
	"context"

	"github.com/hvm-interop/hvm-go/domain/entities"
	herrors "github.com/hvm-interop/hvm-go/domain/errors"
	"github.com/hvm-interop/hvm-go/domain/ports"
)

// checkErr inspects the error slot of a fallible boundary call. A non-null
// slot is decoded into an *errors.InteropError and freed before returning.
// The caller stays responsible for the call's primary return value.
func (e *Engine) checkErr(ctx context.Context, op string, errOut ports.Ptr) error {
	msg := newNativeString(e.boundary, errOut)
	if !msg.HasValue() {
		return nil
	}
	e.track(entities.ResourceCString, entities.EventAllocated)
	defer func() {
		msg.Release(ctx)
		e.track(entities.ResourceCString, entities.EventReleased)
	}()

	return &herrors.InteropError{Op: op, Message: msg.String()}
}
