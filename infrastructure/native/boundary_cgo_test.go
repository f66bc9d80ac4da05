//go:build cgo && hvmnative

package native_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hvm "github.com/hvm-interop/hvm-go"
	herrors "github.com/hvm-interop/hvm-go/domain/errors"
	"github.com/hvm-interop/hvm-go/infrastructure/native"
	"github.com/hvm-interop/hvm-go/samples"
)

func openEngine(t *testing.T) *hvm.Engine {
	t.Helper()
	b, err := native.Open()
	require.NoError(t, err)
	return hvm.New(b)
}

func TestNative_EvaluateFib(t *testing.T) {
	ctx := context.Background()
	e := openEngine(t)

	src, err := samples.Render("fib", map[string]any{"N": 10})
	require.NoError(t, err)

	book, err := e.Parse(ctx, src)
	require.NoError(t, err)
	defer book.Close()

	res, err := book.Evaluate(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Result)
	assert.NotZero(t, res.Iterations)
}

func TestNative_ParseError(t *testing.T) {
	e := openEngine(t)

	src, err := samples.Render("faulty", nil)
	require.NoError(t, err)

	book, err := e.Parse(context.Background(), src)
	assert.Nil(t, book)
	assert.ErrorIs(t, err, herrors.ErrInterop)
}

func TestNative_SerializeCapacity(t *testing.T) {
	ctx := context.Background()
	e := openEngine(t)

	src, err := samples.Render("fib", nil)
	require.NoError(t, err)
	book, err := e.Parse(ctx, src)
	require.NoError(t, err)
	defer book.Close()

	n, err := book.SerializedLen(ctx)
	require.NoError(t, err)

	_, ok, err := book.SerializeTo(ctx, make([]byte, n-1))
	require.NoError(t, err)
	assert.False(t, ok)

	written, ok, err := book.SerializeTo(ctx, make([]byte, n))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, n, written)
}
