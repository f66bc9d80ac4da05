// Package native binds the boundary contract to the engine's shared library
// (libhvm_dotnet) through cgo.
//
// The binding is only compiled with cgo enabled and the hvmnative build tag:
//
//	CGO_LDFLAGS="-L/path/to/lib" go build -tags hvmnative ./...
//
// Without it, Open reports errors.ErrUnavailable so callers can fall back to
// the wazero backend.
package native
