package entities

import (
	"fmt"
	"math"
	"time"
)

// RawEvaluationResult mirrors the native evaluation record field by field.
// The string fields are native addresses owned by the record and are only
// valid until the record is freed.
type RawEvaluationResult struct {
	Iterations uint64
	Seconds    float64
	Result     uintptr
	MemDump    uintptr

	// Deallocator is the engine's own free routine for the record. It is
	// carried for completeness and never dereferenced or called by the host.
	Deallocator uintptr
}

// EvaluationResult is the host-owned outcome of one evaluation.
type EvaluationResult struct {
	// Result is the readback of the root of the reduced net.
	Result string `json:"result"`

	// MemDump is the engine's textual memory dump. Empty unless requested.
	MemDump string `json:"mem_dump,omitempty"`

	// Iterations is the number of interactions performed.
	Iterations uint64 `json:"iterations"`

	// Duration is the wall-clock time spent reducing.
	Duration time.Duration `json:"duration_ns"`
}

// DurationFromSeconds converts the engine's floating-point seconds into a
// time.Duration. Negative and NaN values collapse to zero; values beyond the
// range of time.Duration, including +Inf, saturate at its maximum.
func DurationFromSeconds(seconds float64) time.Duration {
	if !(seconds > 0) {
		return 0
	}
	ns := seconds * float64(time.Second)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// IterationsPerSecond returns the interaction throughput. It is zero when the
// duration is zero so the value always stays finite.
func (r EvaluationResult) IterationsPerSecond() float64 {
	secs := r.Duration.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.Iterations) / secs
}

// HasMemDump reports whether a memory dump was produced.
func (r EvaluationResult) HasMemDump() bool {
	return r.MemDump != ""
}

func (r EvaluationResult) String() string {
	dump := "<empty>"
	if r.HasMemDump() {
		dump = "\n" + r.MemDump
	}
	return fmt.Sprintf("{ Iterations = %d, Duration = %s, IPS = %.2f, Result = %s, MemDump = %s }",
		r.Iterations, r.Duration, r.IterationsPerSecond(), r.Result, dump)
}
