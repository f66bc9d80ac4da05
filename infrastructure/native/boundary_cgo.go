//go:build cgo && hvmnative

package native

/*
#cgo LDFLAGS: -lhvm_dotnet
#include <stdint.h>
#include <stdlib.h>
#include <string.h>

typedef struct hvm_book hvm_book;

typedef struct {
	uint64_t iterations;
	double time;
	char* result;
	char* mem_dump;
	void (*deallocator)(void*);
} hvm_evaluation_result;

extern void free_cstring(char* s);
extern void free_book(hvm_book* book);
extern hvm_book* book_parse(const char* code, char** err_out);
extern hvm_evaluation_result* book_evaluate(const hvm_book* book, uint32_t runtime_type, uint32_t enable_mem_dump, char** err_out);
extern void free_evaluation_result(hvm_evaluation_result* result);
extern void* book_serialize(const hvm_book* book, char** err_out);
extern uint64_t vec_get_length(void* vec);
extern void vec_copy(void* vec, uint8_t* loc, uint64_t size);
extern void free_vec(void* vec);

// Addresses cross into Go as uintptr_t so Go never holds a typed C pointer.

static uintptr_t hvm_book_parse(const char* code, uintptr_t* err_out) {
	return (uintptr_t)book_parse(code, (char**)err_out);
}
static void hvm_free_book(uintptr_t book) {
	free_book((hvm_book*)book);
}
static uintptr_t hvm_book_evaluate(uintptr_t book, uint32_t runtime_type, uint32_t enable_mem_dump, uintptr_t* err_out) {
	return (uintptr_t)book_evaluate((const hvm_book*)book, runtime_type, enable_mem_dump, (char**)err_out);
}
static void hvm_free_evaluation_result(uintptr_t result) {
	free_evaluation_result((hvm_evaluation_result*)result);
}
static uintptr_t hvm_book_serialize(uintptr_t book, uintptr_t* err_out) {
	return (uintptr_t)book_serialize((const hvm_book*)book, (char**)err_out);
}
static uint64_t hvm_vec_get_length(uintptr_t vec) {
	return vec_get_length((void*)vec);
}
static void hvm_vec_copy(uintptr_t vec, uint8_t* loc, uint64_t size) {
	vec_copy((void*)vec, loc, size);
}
static void hvm_free_vec(uintptr_t vec) {
	free_vec((void*)vec);
}
static void hvm_free_cstring(uintptr_t s) {
	free_cstring((char*)s);
}
static const char* hvm_cstr(uintptr_t s) {
	return (const char*)s;
}
static hvm_evaluation_result* hvm_record(uintptr_t p) {
	return (hvm_evaluation_result*)p;
}
*/
import "C"

import (
	"context"
	"unsafe"

	"github.com/hvm-interop/hvm-go/domain/entities"
	"github.com/hvm-interop/hvm-go/domain/ports"
)

// Available reports whether the native binding was compiled in.
const Available = true

// Boundary calls the shared library directly. It holds no state; the library
// manages its own.
type Boundary struct{}

var _ ports.Boundary = (*Boundary)(nil)

// Open returns the native boundary.
func Open() (*Boundary, error) {
	return &Boundary{}, nil
}

// Close is a no-op; the shared library stays loaded for the process lifetime.
func (b *Boundary) Close(context.Context) error {
	return nil
}

func errSlot(errOut *ports.Ptr) *C.uintptr_t {
	*errOut = ports.Null
	return (*C.uintptr_t)(unsafe.Pointer(errOut))
}

// BookParse implements ports.Boundary.
func (b *Boundary) BookParse(_ context.Context, code string, errOut *ports.Ptr) ports.Ptr {
	cCode := C.CString(code)
	defer C.free(unsafe.Pointer(cCode))

	return ports.Ptr(C.hvm_book_parse(cCode, errSlot(errOut)))
}

// FreeBook implements ports.Boundary.
func (b *Boundary) FreeBook(_ context.Context, book ports.Ptr) {
	C.hvm_free_book(C.uintptr_t(book))
}

// BookEvaluate implements ports.Boundary.
func (b *Boundary) BookEvaluate(_ context.Context, book ports.Ptr, runtime entities.RuntimeType, enableMemDump uint32, errOut *ports.Ptr) ports.Ptr {
	return ports.Ptr(C.hvm_book_evaluate(C.uintptr_t(book), C.uint32_t(runtime), C.uint32_t(enableMemDump), errSlot(errOut)))
}

// FreeEvaluationResult implements ports.Boundary.
func (b *Boundary) FreeEvaluationResult(_ context.Context, result ports.Ptr) {
	C.hvm_free_evaluation_result(C.uintptr_t(result))
}

// BookSerialize implements ports.Boundary.
func (b *Boundary) BookSerialize(_ context.Context, book ports.Ptr, errOut *ports.Ptr) ports.Ptr {
	return ports.Ptr(C.hvm_book_serialize(C.uintptr_t(book), errSlot(errOut)))
}

// VecGetLength implements ports.Boundary.
func (b *Boundary) VecGetLength(_ context.Context, vec ports.Ptr) uint64 {
	return uint64(C.hvm_vec_get_length(C.uintptr_t(vec)))
}

// VecCopy implements ports.Boundary. The library aborts when the destination
// is shorter than the vector, so that case is refused before the call.
func (b *Boundary) VecCopy(_ context.Context, vec ports.Ptr, dst []byte) uint64 {
	n := uint64(C.hvm_vec_get_length(C.uintptr_t(vec)))
	if n == 0 || uint64(len(dst)) < n {
		return 0
	}
	C.hvm_vec_copy(C.uintptr_t(vec), (*C.uint8_t)(unsafe.Pointer(&dst[0])), C.uint64_t(len(dst)))
	return n
}

// FreeVec implements ports.Boundary.
func (b *Boundary) FreeVec(_ context.Context, vec ports.Ptr) {
	C.hvm_free_vec(C.uintptr_t(vec))
}

// FreeCString implements ports.Boundary.
func (b *Boundary) FreeCString(_ context.Context, s ports.Ptr) {
	C.hvm_free_cstring(C.uintptr_t(s))
}

// ReadCString implements ports.Boundary.
func (b *Boundary) ReadCString(s ports.Ptr) ([]byte, bool) {
	if s == ports.Null {
		return nil, false
	}
	cs := C.hvm_cstr(C.uintptr_t(s))
	return C.GoBytes(unsafe.Pointer(cs), C.int(C.strlen(cs))), true
}

// ReadEvaluationResult implements ports.Boundary.
func (b *Boundary) ReadEvaluationResult(p ports.Ptr) (entities.RawEvaluationResult, bool) {
	if p == ports.Null {
		return entities.RawEvaluationResult{}, false
	}
	rec := C.hvm_record(C.uintptr_t(p))
	return entities.RawEvaluationResult{
		Iterations:  uint64(rec.iterations),
		Seconds:     float64(rec.time),
		Result:      uintptr(unsafe.Pointer(rec.result)),
		MemDump:     uintptr(unsafe.Pointer(rec.mem_dump)),
		Deallocator: uintptr(unsafe.Pointer(rec.deallocator)),
	}, true
}
