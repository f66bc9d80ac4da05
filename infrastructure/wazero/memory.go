package wazero

import (
	"bytes"
	"context"
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/hvm-interop/hvm-go/domain/entities"
	"github.com/hvm-interop/hvm-go/domain/ports"
)

const (
	// errSlotSize is the size of a wasm32 char* out-parameter.
	errSlotSize = 4

	// recordSize is the size of the wasm32 evaluation record.
	recordSize = 28

	maxGuestSize = math.MaxUint32
)

// Offsets into the wasm32 evaluation record.
const (
	offIterations  = 0
	offSeconds     = 8
	offResult      = 16
	offMemDump     = 20
	offDeallocator = 24
)

func fitsGuest(p ports.Ptr) bool {
	return uint64(p) <= maxGuestSize
}

// guestPtr narrows a host-side address to a wasm32 pointer. Addresses always
// originate from this backend, so they fit.
func guestPtr(p ports.Ptr) uint32 {
	return uint32(p) //nolint:gosec // G115: addresses come from a wasm32 guest
}

// alloc reserves size bytes in guest memory.
func (b *Boundary) alloc(ctx context.Context, size uint32) (uint32, bool) {
	res, err := b.call(ctx, b.fn.allocate, uint64(size))
	if err != nil {
		b.logger.ErrorContext(ctx, "wazero: failed to call guest allocate", "error", err)
		return 0, false
	}
	ptr := api.DecodeU32(res)
	if ptr == 0 {
		b.logger.ErrorContext(ctx, "wazero: guest allocate returned null", "size", size)
		return 0, false
	}
	return ptr, true
}

func (b *Boundary) dealloc(ctx context.Context, ptr, size uint32) {
	if _, err := b.call(ctx, b.fn.deallocate, uint64(ptr), uint64(size)); err != nil {
		b.logger.ErrorContext(ctx, "wazero: failed to call guest deallocate", "error", err)
	}
}

// writeCString copies s into freshly allocated guest memory with a NUL
// terminator and returns the address and allocation size.
func (b *Boundary) writeCString(ctx context.Context, s string) (uint32, uint32, bool) {
	if uint64(len(s))+1 > maxGuestSize {
		return 0, 0, false
	}
	size := uint32(len(s) + 1) //nolint:gosec // G115: bounded above
	ptr, ok := b.alloc(ctx, size)
	if !ok {
		return 0, 0, false
	}

	buf := make([]byte, size)
	copy(buf, s)
	if !b.memory.Write(ptr, buf) {
		b.logger.ErrorContext(ctx, "wazero: failed to write string to guest memory", "ptr", ptr, "len", size)
		b.dealloc(ctx, ptr, size)
		return 0, 0, false
	}
	return ptr, size, true
}

// readCString copies the NUL-terminated string at ptr out of guest memory.
func readCString(mem api.Memory, ptr uint32) ([]byte, bool) {
	if ptr == 0 || ptr >= mem.Size() {
		return nil, false
	}
	view, ok := mem.Read(ptr, mem.Size()-ptr)
	if !ok {
		return nil, false
	}
	n := bytes.IndexByte(view, 0)
	if n < 0 {
		return nil, false
	}
	return bytes.Clone(view[:n]), true
}

// readRecord decodes the wasm32 evaluation record at ptr.
func readRecord(mem api.Memory, ptr uint32) (entities.RawEvaluationResult, bool) {
	if ptr == 0 || uint64(ptr)+recordSize > uint64(mem.Size()) {
		return entities.RawEvaluationResult{}, false
	}

	var rec entities.RawEvaluationResult
	iterations, ok1 := mem.ReadUint64Le(ptr + offIterations)
	seconds, ok2 := mem.ReadFloat64Le(ptr + offSeconds)
	result, ok3 := mem.ReadUint32Le(ptr + offResult)
	memDump, ok4 := mem.ReadUint32Le(ptr + offMemDump)
	dealloc, ok5 := mem.ReadUint32Le(ptr + offDeallocator)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return entities.RawEvaluationResult{}, false
	}

	rec.Iterations = iterations
	rec.Seconds = seconds
	rec.Result = uintptr(result)
	rec.MemDump = uintptr(memDump)
	rec.Deallocator = uintptr(dealloc)
	return rec, true
}
