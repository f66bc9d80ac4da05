package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hvm-interop/hvm-go/domain/entities"
	herrors "github.com/hvm-interop/hvm-go/domain/errors"
	"github.com/hvm-interop/hvm-go/domain/ports"
	"github.com/hvm-interop/hvm-go/infrastructure/native"
	"github.com/hvm-interop/hvm-go/infrastructure/wazero"
)

// Backend is an opened boundary together with the function that tears it down.
type Backend struct {
	Boundary ports.Boundary
	Close    func(context.Context) error
}

// BackendOpener opens the boundary selected by a run configuration.
type BackendOpener func(ctx context.Context, cfg *entities.RunConfig, logger *slog.Logger) (*Backend, error)

// OpenBackend is the default BackendOpener: the linked library for "native",
// an in-process wasm32 build of the engine for "wasm".
func OpenBackend(ctx context.Context, cfg *entities.RunConfig, logger *slog.Logger) (*Backend, error) {
	switch cfg.Backend {
	case entities.BackendNative:
		b, err := native.Open()
		if err != nil {
			return nil, err
		}
		return &Backend{Boundary: b, Close: b.Close}, nil

	case entities.BackendWasm:
		wasmBytes, err := os.ReadFile(cfg.WasmPath) //nolint:gosec // G304: path is chosen by the operator
		if err != nil {
			return nil, &herrors.LoadError{
				Backend: entities.BackendWasm,
				Err:     fmt.Errorf("failed to read engine module: %w", err),
			}
		}
		b, err := wazero.Load(ctx, wasmBytes, wazero.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return &Backend{Boundary: b, Close: b.Close}, nil

	default:
		return nil, &herrors.ConfigError{
			Field: "backend",
			Err:   fmt.Errorf("unknown backend %q", cfg.Backend),
		}
	}
}
