package hvm

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/hvm-interop/hvm-go/domain/ports"
)

// nativeString wraps a NUL-terminated string allocated by the engine.
// It decodes at most once and frees the native buffer at most once.
type nativeString struct {
	boundary ports.Boundary
	ptr      ports.Ptr
	text     string
	decoded  bool
}

func newNativeString(boundary ports.Boundary, ptr ports.Ptr) *nativeString {
	return &nativeString{boundary: boundary, ptr: ptr}
}

// HasValue reports whether the wrapped address is non-null.
func (s *nativeString) HasValue() bool {
	return s.ptr != ports.Null
}

// String decodes the native bytes on first use and returns the cached text
// afterwards. A released or null string decodes to "".
func (s *nativeString) String() string {
	if !s.decoded {
		s.text = decodeCString(s.boundary, s.ptr)
		s.decoded = true
	}
	return s.text
}

// Release frees the native buffer if there is one. Calling it again is a no-op.
func (s *nativeString) Release(ctx context.Context) {
	if s.ptr == ports.Null {
		return
	}
	s.boundary.FreeCString(ctx, s.ptr)
	s.ptr = ports.Null
}

// decodeCString reads the string at ptr without taking ownership of it.
// Invalid UTF-8 is replaced with U+FFFD rather than rejected.
func decodeCString(boundary ports.Boundary, ptr ports.Ptr) string {
	if ptr == ports.Null {
		return ""
	}
	data, ok := boundary.ReadCString(ptr)
	if !ok {
		return ""
	}
	if utf8.Valid(data) {
		return string(data)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return string(out)
}
