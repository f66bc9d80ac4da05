//go:build !(cgo && hvmnative)

package native

import (
	"context"
	"fmt"

	"github.com/hvm-interop/hvm-go/domain/entities"
	herrors "github.com/hvm-interop/hvm-go/domain/errors"
	"github.com/hvm-interop/hvm-go/domain/ports"
)

// Available reports whether the native binding was compiled in.
const Available = false

// Boundary is the placeholder used when the binding is not compiled in.
// Open never returns one.
type Boundary struct {
	ports.Boundary
}

// Open reports errors.ErrUnavailable: the binary was built without cgo or
// without the hvmnative tag.
func Open() (*Boundary, error) {
	return nil, &herrors.LoadError{
		Backend: entities.BackendNative,
		Err:     fmt.Errorf("built without cgo or the hvmnative tag: %w", herrors.ErrUnavailable),
	}
}

// Close is a no-op.
func (b *Boundary) Close(context.Context) error {
	return nil
}
