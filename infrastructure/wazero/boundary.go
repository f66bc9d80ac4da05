package wazero

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/hvm-interop/hvm-go/domain/entities"
	herrors "github.com/hvm-interop/hvm-go/domain/errors"
	"github.com/hvm-interop/hvm-go/domain/ports"
)

// Guest export names.
const (
	exportBookParse            = "book_parse"
	exportFreeBook             = "free_book"
	exportBookEvaluate         = "book_evaluate"
	exportFreeEvaluationResult = "free_evaluation_result"
	exportBookSerialize        = "book_serialize"
	exportVecGetLength         = "vec_get_length"
	exportVecCopy              = "vec_copy"
	exportFreeVec              = "free_vec"
	exportFreeCString          = "free_cstring"
	exportAllocate             = "allocate"
	exportDeallocate           = "deallocate"
	exportMemory               = "memory"
)

type guestFuncs struct {
	bookParse            api.Function
	freeBook             api.Function
	bookEvaluate         api.Function
	freeEvaluationResult api.Function
	bookSerialize        api.Function
	vecGetLength         api.Function
	vecCopy              api.Function
	freeVec              api.Function
	freeCString          api.Function
	allocate             api.Function
	deallocate           api.Function
}

// Boundary implements ports.Boundary on top of a wazero module instance.
// A module instance is single-threaded, so every guest call is serialized.
type Boundary struct {
	mu      sync.Mutex
	runtime wazero.Runtime
	memory  api.Memory
	fn      guestFuncs
	logger  *slog.Logger

	// stderr holds what the guest printed during the current call.
	stderr *boundedBuffer

	// hostStrings are error messages the host wrote into guest memory when
	// the guest itself could not report one. They are returned with
	// deallocate rather than free_cstring.
	hostStrings map[ports.Ptr]uint32
}

var _ ports.Boundary = (*Boundary)(nil)

// Load compiles and instantiates the engine module. Failures, including a
// module that lacks any required export, are returned as *errors.LoadError.
func Load(ctx context.Context, wasmBytes []byte, opts ...Option) (*Boundary, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, cfg.RuntimeConfig)
	fail := func(err error) (*Boundary, error) {
		_ = rt.Close(ctx)
		return nil, &herrors.LoadError{Backend: entities.BackendWasm, Err: err}
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		return fail(fmt.Errorf("failed to instantiate WASI: %w", err))
	}
	if err := registerHostModule(ctx, rt, cfg); err != nil {
		return fail(fmt.Errorf("failed to register host functions: %w", err))
	}

	stderr := newBoundedBuffer(int(cfg.MaxStderrSize))
	var guestStderr io.Writer = stderr
	if cfg.Stderr != nil {
		guestStderr = io.MultiWriter(stderr, cfg.Stderr)
	}
	modCfg := wazero.NewModuleConfig().WithName(cfg.ModuleName).WithStderr(guestStderr)
	mod, err := rt.InstantiateWithConfig(ctx, wasmBytes, modCfg)
	if err != nil {
		return fail(fmt.Errorf("failed to instantiate module: %w", err))
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			return fail(fmt.Errorf("failed to call _initialize: %w", err))
		}
	}

	fn, mem, err := resolveExports(mod)
	if err != nil {
		return fail(err)
	}

	cfg.Logger.DebugContext(ctx, "wazero: engine module loaded", "module", cfg.ModuleName)
	return &Boundary{
		runtime:     rt,
		memory:      mem,
		fn:          fn,
		logger:      cfg.Logger,
		stderr:      stderr,
		hostStrings: make(map[ports.Ptr]uint32),
	}, nil
}

// resolveExports looks up the engine's functions and its exported linear
// memory. Module.Memory is not used: it is a non-nil interface even when the
// module defines no memory.
func resolveExports(mod api.Module) (guestFuncs, api.Memory, error) {
	var missing []string
	lookup := func(name string) api.Function {
		f := mod.ExportedFunction(name)
		if f == nil {
			missing = append(missing, name)
		}
		return f
	}

	fn := guestFuncs{
		bookParse:            lookup(exportBookParse),
		freeBook:             lookup(exportFreeBook),
		bookEvaluate:         lookup(exportBookEvaluate),
		freeEvaluationResult: lookup(exportFreeEvaluationResult),
		bookSerialize:        lookup(exportBookSerialize),
		vecGetLength:         lookup(exportVecGetLength),
		vecCopy:              lookup(exportVecCopy),
		freeVec:              lookup(exportFreeVec),
		freeCString:          lookup(exportFreeCString),
		allocate:             lookup(exportAllocate),
		deallocate:           lookup(exportDeallocate),
	}
	mem := mod.ExportedMemory(exportMemory)
	if mem == nil {
		missing = append(missing, exportMemory)
	}
	if len(missing) > 0 {
		return guestFuncs{}, nil, fmt.Errorf("module is missing required exports: %s", strings.Join(missing, ", "))
	}
	return fn, mem, nil
}

// Close releases the module and the runtime. Addresses handed out earlier
// become invalid.
func (b *Boundary) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runtime.Close(ctx)
}

// BookParse implements ports.Boundary.
func (b *Boundary) BookParse(ctx context.Context, code string, errOut *ports.Ptr) ports.Ptr {
	b.mu.Lock()
	defer b.mu.Unlock()

	src, size, ok := b.writeCString(ctx, code)
	if !ok {
		*errOut = b.hostError(ctx, "could not copy program text into guest memory")
		return ports.Null
	}
	defer b.dealloc(ctx, src, size)

	return b.withErrSlot(ctx, errOut, func(slot uint32) (uint64, error) {
		return b.call(ctx, b.fn.bookParse, uint64(src), uint64(slot))
	})
}

// FreeBook implements ports.Boundary.
func (b *Boundary) FreeBook(ctx context.Context, book ports.Ptr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.free(ctx, b.fn.freeBook, book)
}

// BookEvaluate implements ports.Boundary.
func (b *Boundary) BookEvaluate(ctx context.Context, book ports.Ptr, runtime entities.RuntimeType, enableMemDump uint32, errOut *ports.Ptr) ports.Ptr {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.withErrSlot(ctx, errOut, func(slot uint32) (uint64, error) {
		return b.call(ctx, b.fn.bookEvaluate,
			uint64(guestPtr(book)), uint64(runtime), uint64(enableMemDump), uint64(slot))
	})
}

// FreeEvaluationResult implements ports.Boundary.
func (b *Boundary) FreeEvaluationResult(ctx context.Context, result ports.Ptr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.free(ctx, b.fn.freeEvaluationResult, result)
}

// BookSerialize implements ports.Boundary.
func (b *Boundary) BookSerialize(ctx context.Context, book ports.Ptr, errOut *ports.Ptr) ports.Ptr {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.withErrSlot(ctx, errOut, func(slot uint32) (uint64, error) {
		return b.call(ctx, b.fn.bookSerialize, uint64(guestPtr(book)), uint64(slot))
	})
}

// VecGetLength implements ports.Boundary.
func (b *Boundary) VecGetLength(ctx context.Context, vec ports.Ptr) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, err := b.call(ctx, b.fn.vecGetLength, uint64(guestPtr(vec)))
	if err != nil {
		b.logger.ErrorContext(ctx, "wazero: vec_get_length failed", "error", err)
		return 0
	}
	return n
}

// VecCopy implements ports.Boundary. The guest copies into a scratch buffer
// in its own memory, which is then copied out into dst.
func (b *Boundary) VecCopy(ctx context.Context, vec ports.Ptr, dst []byte) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, err := b.call(ctx, b.fn.vecGetLength, uint64(guestPtr(vec)))
	if err != nil {
		b.logger.ErrorContext(ctx, "wazero: vec_get_length failed", "error", err)
		return 0
	}
	if n == 0 || n > uint64(len(dst)) || n > maxGuestSize {
		return 0
	}

	size := uint32(n) //nolint:gosec // G115: bounded by maxGuestSize above
	scratch, ok := b.alloc(ctx, size)
	if !ok {
		return 0
	}
	defer b.dealloc(ctx, scratch, size)

	if _, err := b.call(ctx, b.fn.vecCopy, uint64(guestPtr(vec)), uint64(scratch), n); err != nil {
		b.logger.ErrorContext(ctx, "wazero: vec_copy failed", "error", err)
		return 0
	}
	data, ok := b.memory.Read(scratch, size)
	if !ok {
		b.logger.ErrorContext(ctx, "wazero: failed to read copied vector", "ptr", scratch, "len", size)
		return 0
	}
	return uint64(copy(dst, data))
}

// FreeVec implements ports.Boundary.
func (b *Boundary) FreeVec(ctx context.Context, vec ports.Ptr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.free(ctx, b.fn.freeVec, vec)
}

// FreeCString implements ports.Boundary.
func (b *Boundary) FreeCString(ctx context.Context, s ports.Ptr) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if size, ok := b.hostStrings[s]; ok {
		delete(b.hostStrings, s)
		b.dealloc(ctx, guestPtr(s), size)
		return
	}
	b.free(ctx, b.fn.freeCString, s)
}

// ReadCString implements ports.Boundary.
func (b *Boundary) ReadCString(s ports.Ptr) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !fitsGuest(s) {
		return nil, false
	}
	return readCString(b.memory, guestPtr(s))
}

// ReadEvaluationResult implements ports.Boundary.
func (b *Boundary) ReadEvaluationResult(p ports.Ptr) (entities.RawEvaluationResult, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !fitsGuest(p) {
		return entities.RawEvaluationResult{}, false
	}
	return readRecord(b.memory, guestPtr(p))
}

// withErrSlot runs a fallible guest call with a zeroed error slot in guest
// memory and copies the slot into errOut afterwards. A trap is reported
// through errOut as a host-written message.
func (b *Boundary) withErrSlot(ctx context.Context, errOut *ports.Ptr, call func(slot uint32) (uint64, error)) ports.Ptr {
	*errOut = ports.Null

	slot, ok := b.alloc(ctx, errSlotSize)
	if !ok {
		*errOut = b.hostError(ctx, "could not allocate error slot in guest memory")
		return ports.Null
	}
	defer b.dealloc(ctx, slot, errSlotSize)

	mem := b.memory
	if !mem.WriteUint32Le(slot, 0) {
		*errOut = b.hostError(ctx, "could not clear error slot in guest memory")
		return ports.Null
	}

	b.stderr.Reset()
	res, err := call(slot)
	if err != nil {
		*errOut = b.hostError(ctx, trapMessage(err, b.stderr))
		return ports.Null
	}

	if msg, ok := mem.ReadUint32Le(slot); ok {
		*errOut = ports.Ptr(msg)
	}
	return ports.Ptr(api.DecodeU32(res))
}

// call invokes a guest function and returns its first result, if any.
func (b *Boundary) call(ctx context.Context, fn api.Function, params ...uint64) (uint64, error) {
	results, err := fn.Call(ctx, params...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", funcName(fn), err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0], nil
}

// funcName prefers the export name; engine builds are usually stripped of
// their name section.
func funcName(fn api.Function) string {
	def := fn.Definition()
	if names := def.ExportNames(); len(names) > 0 {
		return names[0]
	}
	return def.Name()
}

// free calls a guest release function.
func (b *Boundary) free(ctx context.Context, fn api.Function, p ports.Ptr) {
	if _, err := b.call(ctx, fn, uint64(guestPtr(p))); err != nil {
		b.logger.ErrorContext(ctx, "wazero: guest free failed", "error", err)
	}
}

// hostError writes msg into guest memory so it can travel through the error
// channel like a guest-produced message.
func (b *Boundary) hostError(ctx context.Context, msg string) ports.Ptr {
	b.logger.ErrorContext(ctx, "wazero: guest call failed", "error", msg)
	ptr, size, ok := b.writeCString(ctx, msg)
	if !ok {
		return ports.Null
	}
	p := ports.Ptr(ptr)
	b.hostStrings[p] = size
	return p
}
