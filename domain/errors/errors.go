// Package errors provides the error types of the binding layer.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/hvm-interop/hvm-go/domain/entities"
)

var (
	// ErrInterop matches every *InteropError via errors.Is.
	ErrInterop = stdErrors.New("native engine reported an error")

	// ErrReleased is returned by operations on a Book that was already closed.
	ErrReleased = stdErrors.New("book already released")

	// ErrUnavailable is returned when a boundary backend was not compiled in
	// or cannot be reached on this platform.
	ErrUnavailable = stdErrors.New("boundary backend unavailable")
)

// DetailedError is implemented by errors that can describe themselves as an
// entities.ErrorDetail for reports.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to a structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	if stdErrors.Is(err, ErrReleased) {
		return &entities.ErrorDetail{Message: err.Error(), Type: "released"}
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// InteropError is a failure reported by the native engine through its error
// channel. Message is the engine's text, verbatim.
type InteropError struct {
	Op      string
	Message string
}

func (e *InteropError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Is makes errors.Is(err, ErrInterop) true for any InteropError.
func (e *InteropError) Is(target error) bool {
	return target == ErrInterop
}

// ToErrorDetail implements DetailedError.
func (e *InteropError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Message, Type: "interop", Code: e.Op}
}

// MisuseError signals a programming error at the call site, such as using a
// Book that was not produced by Engine.Parse. It is raised with panic.
type MisuseError struct {
	Op     string
	Reason string
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("hvm: misuse of %s: %s", e.Op, e.Reason)
}

// LoadError represents a failure to open a boundary backend.
type LoadError struct {
	Err     error
	Backend string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s backend: %v", e.Backend, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *LoadError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "load", Code: e.Backend}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}
