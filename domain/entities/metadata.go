package entities

import (
	"time"
)

// RunMetadata contains execution metadata for a run.
type RunMetadata struct {
	// StartTime is when the run started.
	StartTime time.Time `json:"start_time"`

	// EndTime is when the run completed.
	EndTime time.Time `json:"end_time"`

	// Backend is the boundary backend that served the run.
	Backend string `json:"backend,omitempty"`

	// Runtime is the runtime variant that was requested.
	Runtime string `json:"runtime,omitempty"`

	// SerializedBytes is the size of the program's binary encoding.
	SerializedBytes uint64 `json:"serialized_bytes,omitempty"`

	// Duration is the total host-side time, parse to release.
	Duration time.Duration `json:"duration_ns"`
}

// NewRunMetadata creates a new RunMetadata with the given start and end times.
func NewRunMetadata(start, end time.Time) *RunMetadata {
	return &RunMetadata{
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
	}
}

// WithBackend sets the backend name and returns the receiver.
func (m *RunMetadata) WithBackend(backend string) *RunMetadata {
	m.Backend = backend
	return m
}

// WithRuntime sets the runtime name and returns the receiver.
func (m *RunMetadata) WithRuntime(runtime RuntimeType) *RunMetadata {
	m.Runtime = runtime.String()
	return m
}

// WithSerializedBytes sets the serialized size and returns the receiver.
func (m *RunMetadata) WithSerializedBytes(n uint64) *RunMetadata {
	m.SerializedBytes = n
	return m
}
