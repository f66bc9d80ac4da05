// Package hvmtest provides an instrumented in-memory engine for testing code
// built on the hvm package without the native library.
//
// The fake implements ports.Boundary with the same ownership rules as the
// real engine and records every call, every live allocation and every
// contract violation (double free, free of the wrong kind, undersized copy
// destination), so tests can assert that nothing leaked and nothing was
// released twice.
package hvmtest

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/hvm-interop/hvm-go/domain/entities"
	"github.com/hvm-interop/hvm-go/domain/ports"
)

// Boundary function names as recorded by Calls.
const (
	CallBookParse            = "book_parse"
	CallFreeBook             = "free_book"
	CallBookEvaluate         = "book_evaluate"
	CallFreeEvaluationResult = "free_evaluation_result"
	CallBookSerialize        = "book_serialize"
	CallVecGetLength         = "vec_get_length"
	CallVecCopy              = "vec_copy"
	CallFreeVec              = "free_vec"
	CallFreeCString          = "free_cstring"
)

// kindRecordString marks strings owned by an evaluation record.
const kindRecordString entities.ResourceKind = "record_string"

type allocation struct {
	kind   entities.ResourceKind
	data   []byte // NUL-terminated for strings, raw bytes for vecs
	book   *fakeBook
	record *entities.RawEvaluationResult
}

type fakeBook struct {
	source string
	defs   []string
}

// Boundary is a fake engine. The zero value is not usable; call New.
type Boundary struct {
	cfg config

	mu         sync.Mutex
	next       ports.Ptr
	live       map[ports.Ptr]*allocation
	calls      map[string]int
	violations []string
}

// New creates a fake engine.
func New(opts ...Option) *Boundary {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Boundary{
		cfg:   cfg,
		next:  0x1000,
		live:  make(map[ports.Ptr]*allocation),
		calls: make(map[string]int),
	}
}

// Outstanding returns the number of allocations that have not been freed,
// not counting strings owned by a live evaluation record.
func (b *Boundary) Outstanding() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, a := range b.live {
		if a.kind != kindRecordString {
			n++
		}
	}
	return n
}

// OutstandingByKind returns the number of live allocations of one kind.
func (b *Boundary) OutstandingByKind(kind entities.ResourceKind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, a := range b.live {
		if a.kind == kind {
			n++
		}
	}
	return n
}

// Calls returns how many times the named boundary function was called.
func (b *Boundary) Calls(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

// Violations returns the contract violations observed so far.
func (b *Boundary) Violations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.violations...)
}

// AssertClean reports every leaked allocation and every violation.
func (b *Boundary) AssertClean(t testing.TB) {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var leaked []string
	for ptr, a := range b.live {
		if a.kind != kindRecordString {
			leaked = append(leaked, fmt.Sprintf("%s@%#x", a.kind, uintptr(ptr)))
		}
	}
	sort.Strings(leaked)
	if len(leaked) > 0 {
		t.Errorf("hvmtest: %d native allocations leaked: %s", len(leaked), strings.Join(leaked, ", "))
	}
	for _, v := range b.violations {
		t.Errorf("hvmtest: %s", v)
	}
}

// BookParse implements ports.Boundary.
func (b *Boundary) BookParse(_ context.Context, code string, errOut *ports.Ptr) ports.Ptr {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[CallBookParse]++
	*errOut = ports.Null

	if b.cfg.parseErr != "" && !b.cfg.parseErrBook {
		*errOut = b.allocString(entities.ResourceCString, b.cfg.parseErr)
		return ports.Null
	}
	book, err := parseBook(code)
	if err != nil {
		*errOut = b.allocString(entities.ResourceCString, err.Error())
		return ports.Null
	}
	ptr := b.alloc(&allocation{kind: entities.ResourceBook, book: book})
	if b.cfg.parseErrBook {
		*errOut = b.allocString(entities.ResourceCString, b.cfg.parseErr)
	}
	return ptr
}

// FreeBook implements ports.Boundary.
func (b *Boundary) FreeBook(_ context.Context, book ports.Ptr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[CallFreeBook]++
	b.free(CallFreeBook, book, entities.ResourceBook)
}

// BookEvaluate implements ports.Boundary.
func (b *Boundary) BookEvaluate(_ context.Context, book ports.Ptr, runtime entities.RuntimeType, enableMemDump uint32, errOut *ports.Ptr) ports.Ptr {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[CallBookEvaluate]++
	*errOut = ports.Null

	a, ok := b.lookup(CallBookEvaluate, book, entities.ResourceBook)
	if !ok {
		*errOut = b.allocString(entities.ResourceCString, "invalid book pointer")
		return ports.Null
	}

	switch runtime {
	case entities.RuntimeRust:
	case entities.RuntimeC:
		if !b.cfg.cRuntime {
			*errOut = b.allocString(entities.ResourceCString, "C runtime not supported")
			return ports.Null
		}
	default:
		*errOut = b.allocString(entities.ResourceCString, fmt.Sprintf("Invalid runtime type: %d", uint32(runtime)))
		return ports.Null
	}

	if !a.book.hasDef("main") {
		*errOut = b.allocString(entities.ResourceCString, "No main function found")
		return ports.Null
	}

	rec := &entities.RawEvaluationResult{
		Iterations:  a.book.iterations(),
		Seconds:     b.cfg.seconds,
		Deallocator: 0xdea110c,
	}
	result := b.cfg.result
	if result == nil {
		result = []byte(fmt.Sprintf("#%d", len(a.book.defs)))
	}
	rec.Result = uintptr(b.allocBytes(kindRecordString, result))
	var dump []byte
	if enableMemDump != 0 {
		dump = []byte(a.book.memDump())
	}
	rec.MemDump = uintptr(b.allocBytes(kindRecordString, dump))

	ptr := b.alloc(&allocation{kind: entities.ResourceEvaluationResult, record: rec})
	if b.cfg.evaluateErr != "" {
		*errOut = b.allocString(entities.ResourceCString, b.cfg.evaluateErr)
	}
	return ptr
}

// FreeEvaluationResult implements ports.Boundary.
func (b *Boundary) FreeEvaluationResult(_ context.Context, result ports.Ptr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[CallFreeEvaluationResult]++

	a, ok := b.lookup(CallFreeEvaluationResult, result, entities.ResourceEvaluationResult)
	if !ok {
		return
	}
	delete(b.live, ports.Ptr(a.record.Result))
	delete(b.live, ports.Ptr(a.record.MemDump))
	delete(b.live, result)
}

// BookSerialize implements ports.Boundary.
func (b *Boundary) BookSerialize(_ context.Context, book ports.Ptr, errOut *ports.Ptr) ports.Ptr {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[CallBookSerialize]++
	*errOut = ports.Null

	a, ok := b.lookup(CallBookSerialize, book, entities.ResourceBook)
	if !ok {
		*errOut = b.allocString(entities.ResourceCString, "invalid book pointer")
		return ports.Null
	}

	ptr := b.alloc(&allocation{kind: entities.ResourceVec, data: a.book.encode()})
	if b.cfg.serializeErr != "" {
		*errOut = b.allocString(entities.ResourceCString, b.cfg.serializeErr)
	}
	return ptr
}

// VecGetLength implements ports.Boundary.
func (b *Boundary) VecGetLength(_ context.Context, vec ports.Ptr) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[CallVecGetLength]++

	a, ok := b.lookup(CallVecGetLength, vec, entities.ResourceVec)
	if !ok {
		return 0
	}
	return uint64(len(a.data))
}

// VecCopy implements ports.Boundary.
func (b *Boundary) VecCopy(_ context.Context, vec ports.Ptr, dst []byte) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[CallVecCopy]++

	a, ok := b.lookup(CallVecCopy, vec, entities.ResourceVec)
	if !ok {
		return 0
	}
	if len(dst) < len(a.data) {
		b.violate("%s: destination holds %d bytes, vector has %d", CallVecCopy, len(dst), len(a.data))
		return 0
	}
	return uint64(copy(dst, a.data))
}

// FreeVec implements ports.Boundary.
func (b *Boundary) FreeVec(_ context.Context, vec ports.Ptr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[CallFreeVec]++
	b.free(CallFreeVec, vec, entities.ResourceVec)
}

// FreeCString implements ports.Boundary.
func (b *Boundary) FreeCString(_ context.Context, s ports.Ptr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[CallFreeCString]++
	b.free(CallFreeCString, s, entities.ResourceCString)
}

// ReadCString implements ports.Boundary.
func (b *Boundary) ReadCString(s ports.Ptr) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.live[s]
	if !ok || (a.kind != entities.ResourceCString && a.kind != kindRecordString) {
		b.violate("read of %#x: not a live string", uintptr(s))
		return nil, false
	}
	n := bytes.IndexByte(a.data, 0)
	return append([]byte(nil), a.data[:n]...), true
}

// ReadEvaluationResult implements ports.Boundary.
func (b *Boundary) ReadEvaluationResult(p ports.Ptr) (entities.RawEvaluationResult, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.live[p]
	if !ok || a.kind != entities.ResourceEvaluationResult {
		b.violate("read of %#x: not a live evaluation record", uintptr(p))
		return entities.RawEvaluationResult{}, false
	}
	return *a.record, true
}

func (b *Boundary) alloc(a *allocation) ports.Ptr {
	b.next += 0x10
	b.live[b.next] = a
	return b.next
}

func (b *Boundary) allocString(kind entities.ResourceKind, s string) ports.Ptr {
	return b.allocBytes(kind, []byte(s))
}

func (b *Boundary) allocBytes(kind entities.ResourceKind, data []byte) ports.Ptr {
	buf := make([]byte, len(data)+1)
	copy(buf, data)
	return b.alloc(&allocation{kind: kind, data: buf})
}

func (b *Boundary) lookup(op string, ptr ports.Ptr, kind entities.ResourceKind) (*allocation, bool) {
	a, ok := b.live[ptr]
	if !ok {
		b.violate("%s: %#x is not a live allocation (use after free or double free)", op, uintptr(ptr))
		return nil, false
	}
	if a.kind != kind {
		b.violate("%s: %#x is a %s, want %s", op, uintptr(ptr), a.kind, kind)
		return nil, false
	}
	return a, true
}

func (b *Boundary) free(op string, ptr ports.Ptr, kind entities.ResourceKind) {
	if _, ok := b.lookup(op, ptr, kind); ok {
		delete(b.live, ptr)
	}
}

func (b *Boundary) violate(format string, args ...any) {
	b.violations = append(b.violations, fmt.Sprintf(format, args...))
}
