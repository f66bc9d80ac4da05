package entities

import (
	"fmt"
	"strings"
)

// RuntimeType selects the native execution backend used by an evaluation.
// The numeric values are fixed by the native engine's enum.
type RuntimeType uint32

const (
	// RuntimeRust evaluates with the engine's Rust interpreter.
	RuntimeRust RuntimeType = 0

	// RuntimeC evaluates with the engine's C interpreter. Builds of the engine
	// compiled without a C toolchain report "C runtime not supported".
	RuntimeC RuntimeType = 1
)

// String returns the lowercase name used in configuration and CLI flags.
func (r RuntimeType) String() string {
	switch r {
	case RuntimeRust:
		return "rust"
	case RuntimeC:
		return "c"
	default:
		return fmt.Sprintf("runtime(%d)", uint32(r))
	}
}

// Known reports whether r is one of the runtimes the engine defines.
func (r RuntimeType) Known() bool {
	return r == RuntimeRust || r == RuntimeC
}

// ParseRuntimeType converts a name ("rust", "c") into a RuntimeType.
func ParseRuntimeType(name string) (RuntimeType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "rust":
		return RuntimeRust, nil
	case "c":
		return RuntimeC, nil
	default:
		return 0, fmt.Errorf("unknown runtime %q: must be one of rust, c", name)
	}
}
