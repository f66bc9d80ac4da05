// Package ports defines the interfaces the binding layer depends on.
// The native boundary contract lives here so the core package can be driven
// by the cgo library, the wasm build of the engine or a test fake alike.
package ports
