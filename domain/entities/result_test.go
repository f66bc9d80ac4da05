package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportSuccess(t *testing.T) {
	eval := EvaluationResult{Result: "#1", Iterations: 4000, Duration: 2 * time.Second}
	report := ReportSuccess("run-1", eval)

	assert.Equal(t, ReportStatusSuccess, report.Status)
	assert.Equal(t, "run-1", report.RunID)
	require.NotNil(t, report.Evaluation)
	assert.Equal(t, "#1", report.Evaluation.Result)
	assert.Equal(t, 2000.0, report.IterationsPerSecond)
	assert.True(t, report.IsSuccess())
	assert.Nil(t, report.Error)
}

func TestReportError(t *testing.T) {
	err := NewErrorDetail("interop", "No main function found").WithCode("book_evaluate")
	report := ReportError("run-2", err)

	assert.Equal(t, ReportStatusError, report.Status)
	require.NotNil(t, report.Error)
	assert.Equal(t, "book_evaluate", report.Error.Code)
	assert.Equal(t, "interop", report.Error.Type)
	assert.False(t, report.IsSuccess())
	assert.Nil(t, report.Evaluation)
}

func TestReport_WithMetadata(t *testing.T) {
	start := time.Now()
	end := start.Add(100 * time.Millisecond)
	meta := NewRunMetadata(start, end).
		WithBackend(BackendWasm).
		WithRuntime(RuntimeC).
		WithSerializedBytes(42)

	report := ReportSuccess("run-3", EvaluationResult{}).WithMetadata(meta)

	require.NotNil(t, report.Metadata)
	assert.Equal(t, start, report.Metadata.StartTime)
	assert.Equal(t, end, report.Metadata.EndTime)
	assert.Equal(t, 100*time.Millisecond, report.Metadata.Duration)
	assert.Equal(t, "wasm", report.Metadata.Backend)
	assert.Equal(t, "c", report.Metadata.Runtime)
	assert.Equal(t, uint64(42), report.Metadata.SerializedBytes)
}

func TestErrorDetail_Error(t *testing.T) {
	tests := []struct {
		name   string
		detail *ErrorDetail
		want   string
	}{
		{"nil", nil, ""},
		{"internal hides type", NewErrorDetail("internal", "boom"), "boom"},
		{"typed", NewErrorDetail("config", "backend is required"), "config: backend is required"},
		{"typed with code", NewErrorDetail("interop", "C runtime not supported").WithCode("book_evaluate"), "interop: C runtime not supported [book_evaluate]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.detail.Error())
		})
	}
}
