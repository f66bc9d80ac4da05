package ports

import (
	"context"

	"github.com/hvm-interop/hvm-go/domain/entities"
)

// Ptr is an opaque address handed out by the native engine. Its meaning is
// backend specific (a C pointer, a guest linear-memory offset, a fake id);
// host code only compares it against Null and passes it back.
type Ptr uintptr

// Null is the null address.
const Null Ptr = 0

// Boundary is the contract exported by the native engine.
//
// Every allocation returned here must be passed to its paired free function
// exactly once. Fallible calls write a native string address through errOut;
// a non-null value means the call failed and the string must be released with
// FreeCString. A fallible call may return a non-null allocation even when it
// reports an error.
//
// Implementations perform no ownership tracking of their own: releasing an
// address twice is undefined behaviour, exactly as on the native side.
type Boundary interface {
	// BookParse compiles program text into a book.
	BookParse(ctx context.Context, code string, errOut *Ptr) Ptr

	// FreeBook releases a book returned by BookParse.
	FreeBook(ctx context.Context, book Ptr)

	// BookEvaluate reduces the book's @main definition and returns a record
	// laid out as entities.RawEvaluationResult.
	BookEvaluate(ctx context.Context, book Ptr, runtime entities.RuntimeType, enableMemDump uint32, errOut *Ptr) Ptr

	// FreeEvaluationResult releases a record returned by BookEvaluate,
	// including the strings it points to.
	FreeEvaluationResult(ctx context.Context, result Ptr)

	// BookSerialize encodes the book into a native byte vector.
	BookSerialize(ctx context.Context, book Ptr, errOut *Ptr) Ptr

	// VecGetLength returns the number of bytes held by a vector.
	VecGetLength(ctx context.Context, vec Ptr) uint64

	// VecCopy copies the vector into dst, whose length is the capacity
	// reported to the native side, and returns the number of bytes copied.
	// Callers must ensure len(dst) >= VecGetLength(vec).
	VecCopy(ctx context.Context, vec Ptr, dst []byte) uint64

	// FreeVec releases a vector returned by BookSerialize.
	FreeVec(ctx context.Context, vec Ptr)

	// FreeCString releases a string written through an errOut slot.
	FreeCString(ctx context.Context, s Ptr)

	// ReadCString returns a copy of the bytes of a NUL-terminated native
	// string, without the terminator. ok is false when s cannot be read.
	ReadCString(s Ptr) (data []byte, ok bool)

	// ReadEvaluationResult reads the fixed-layout record at p.
	ReadEvaluationResult(p Ptr) (raw entities.RawEvaluationResult, ok bool)
}
