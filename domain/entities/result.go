package entities

import (
	"time"
)

// ReportStatus represents the outcome status of a run.
type ReportStatus string

const (
	// ReportStatusSuccess indicates the program was parsed and evaluated.
	ReportStatusSuccess ReportStatus = "success"

	// ReportStatusError indicates the run stopped on an error.
	ReportStatusError ReportStatus = "error"
)

// RunReport is what the demo command prints for a run.
type RunReport struct {
	// Timestamp is when the report was created.
	Timestamp time.Time `json:"timestamp"`

	// Evaluation is set when the evaluation completed.
	Evaluation *EvaluationResult `json:"evaluation,omitempty"`

	// Metadata contains execution metadata.
	Metadata *RunMetadata `json:"metadata,omitempty"`

	// Error contains structured error information if Status is error.
	Error *ErrorDetail `json:"error,omitempty"`

	// RunID correlates the report with the log lines of the same run.
	RunID string `json:"run_id"`

	// Status indicates whether the run succeeded.
	Status ReportStatus `json:"status"`

	// IterationsPerSecond is derived from Evaluation.
	IterationsPerSecond float64 `json:"iterations_per_second,omitempty"`
}

// ReportSuccess creates a successful report for an evaluation.
func ReportSuccess(runID string, eval EvaluationResult) RunReport {
	return RunReport{
		RunID:               runID,
		Status:              ReportStatusSuccess,
		Evaluation:          &eval,
		IterationsPerSecond: eval.IterationsPerSecond(),
	}
}

// ReportError creates an error report.
func ReportError(runID string, err *ErrorDetail) RunReport {
	return RunReport{
		RunID:  runID,
		Status: ReportStatusError,
		Error:  err,
	}
}

// WithMetadata returns a copy of the report with the given metadata attached.
func (r RunReport) WithMetadata(m *RunMetadata) RunReport {
	r.Metadata = m
	return r
}

// IsSuccess returns true if the report indicates success.
func (r RunReport) IsSuccess() bool {
	return r.Status == ReportStatusSuccess
}
