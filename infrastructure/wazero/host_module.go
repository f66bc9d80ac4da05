package wazero

import (
	"context"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	hvmlog "github.com/hvm-interop/hvm-go/log"
)

// registerHostModule instantiates the module the engine imports its host
// functions from.
func registerHostModule(ctx context.Context, rt wazero.Runtime, cfg Config) error {
	_, err := rt.NewHostModuleBuilder(cfg.HostModuleName).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			handleLogMessage(ctx, mod, stack, cfg.Logger, cfg.MaxLogSize)
		}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{}).
		Export("log_message").
		Instantiate(ctx)
	return err
}

// handleLogMessage reads a guest log line and forwards it to logger.
func handleLogMessage(ctx context.Context, mod api.Module, stack []uint64, logger *slog.Logger, maxSize uint32) {
	ptr, length := unpackPtrLen(stack[0])

	if length > maxSize {
		logger.ErrorContext(ctx, "wazero: guest log line too large", "size", length, "max", maxSize)
		return
	}

	mem := mod.ExportedMemory(exportMemory)
	if mem == nil {
		logger.ErrorContext(ctx, "wazero: guest log line from a module without memory")
		return
	}
	payload, ok := mem.Read(ptr, length)
	if !ok {
		logger.ErrorContext(ctx, "wazero: failed to read guest log line", "ptr", ptr, "len", length)
		return
	}
	hvmlog.Forward(ctx, logger, payload)
}

// packPtrLen packs a pointer and length into a single i64.
// Upper 32 bits: pointer, lower 32 bits: length.
func packPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << 32) | uint64(length)
}

// unpackPtrLen unpacks a pointer and length from a packed i64.
func unpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)           //nolint:gosec // G115: Packed format stores 32-bit values
	length = uint32(packed & 0xFFFFFFFF) //nolint:gosec // G115: Packed format stores 32-bit values
	return ptr, length
}
