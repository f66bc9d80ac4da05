// Package testutil provides common test assertions for the binding layer.
package testutil

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	herrors "github.com/hvm-interop/hvm-go/domain/errors"
)

// RequireInteropError asserts that err carries an *errors.InteropError for op
// with exactly the engine message msg, and returns it.
func RequireInteropError(t *testing.T, err error, op, msg string) *herrors.InteropError {
	t.Helper()

	var interop *herrors.InteropError
	require.ErrorAs(t, err, &interop)
	assert.Equal(t, op, interop.Op)
	assert.Equal(t, msg, interop.Message)
	assert.ErrorIs(t, err, herrors.ErrInterop)
	return interop
}

// RequireMisuse asserts that f panics with an *errors.MisuseError for op.
func RequireMisuse(t *testing.T, op string, f func()) {
	t.Helper()

	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected a panic from %s", op)
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)

		var misuse *herrors.MisuseError
		require.True(t, errors.As(err, &misuse), "panic value %v is not a MisuseError", err)
		assert.Equal(t, op, misuse.Op)
	}()
	f()
}

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}
