// Package hvm is a host-side binding for the HVM interaction-net engine.
//
// The engine is reached through a ports.Boundary: the shared library via cgo
// (infrastructure/native), a wasm32 build of the engine running under wazero
// (infrastructure/wazero), or the instrumented fake in testing/hvmtest. This
// package owns every native allocation those calls hand out and releases each
// one exactly once.
//
// # Usage
//
//	engine := hvm.New(boundary, hvm.WithLogger(logger))
//
//	book, err := engine.Parse(ctx, source)
//	if err != nil {
//	    return err // *errors.InteropError carrying the engine's message
//	}
//	defer book.Close()
//
//	res, err := book.Evaluate(ctx, hvm.WithRuntime(entities.RuntimeC))
//	fmt.Println(res.Result, res.IterationsPerSecond())
//
// # Ownership
//
// A Book owns one compiled program. Close releases it and is safe to call any
// number of times. A Book that becomes unreachable without Close is released
// by a finalizer as a safety net; the observer sees an EventFinalized and a
// warning is logged.
//
// Evaluation results and serialized bytes are copied into Go memory before
// the native records backing them are freed, so values returned by this
// package never refer to native memory.
//
// # Serialization
//
// SerializeTo copies into a caller buffer and reports ok=false, without an
// error, when the buffer is too small. SerializedLen reports the size to
// allocate, and Serialize allocates it for you.
package hvm
