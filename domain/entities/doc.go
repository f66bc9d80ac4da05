// Package entities provides the core domain types of the binding layer.
// These are plain host-owned values: nothing in this package references
// memory owned by the native engine.
package entities
