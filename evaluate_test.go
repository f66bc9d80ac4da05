package hvm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvm-interop/hvm-go/domain/entities"
	"github.com/hvm-interop/hvm-go/internal/testutil"
	"github.com/hvm-interop/hvm-go/testing/hvmtest"
)

func TestEvaluate_CopiesRecord(t *testing.T) {
	ctx := context.Background()
	e, fake, _ := newTestEngine(t, hvmtest.WithSeconds(0.5))
	book := mustParse(t, e, fibSource)
	defer book.Close()

	res, err := book.Evaluate(ctx)
	require.NoError(t, err)

	assert.Equal(t, "#3", res.Result)
	assert.Equal(t, uint64(3000+len(fibSource)), res.Iterations)
	assert.Equal(t, 500*time.Millisecond, res.Duration)
	assert.InDelta(t, float64(res.Iterations)*2, res.IterationsPerSecond(), 1e-9)
	assert.Equal(t, 1, fake.Calls(hvmtest.CallFreeEvaluationResult))
	assert.Zero(t, fake.OutstandingByKind(entities.ResourceEvaluationResult))
}

func TestEvaluate_FreesRecordExactlyOnce(t *testing.T) {
	tests := []struct {
		name    string
		opts    []hvmtest.Option
		wantErr string
	}{
		{name: "success"},
		{name: "error channel set", opts: []hvmtest.Option{hvmtest.WithEvaluateError("reduction failed")}, wantErr: "book_evaluate: reduction failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			e, fake, obs := newTestEngine(t, tt.opts...)
			book := mustParse(t, e, fibSource)

			_, err := book.Evaluate(ctx, WithMemDump(true))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, 1, fake.Calls(hvmtest.CallFreeEvaluationResult))
			assert.Equal(t, 1, obs.Count(entities.ResourceEvaluationResult, entities.EventReleased))

			require.NoError(t, book.Close())
			fake.AssertClean(t)
		})
	}
}

func TestEvaluate_EngineRejections(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		opts    []EvaluateOption
		wantMsg string
	}{
		{"c runtime unavailable", fibSource, []EvaluateOption{WithRuntime(entities.RuntimeC)}, "C runtime not supported"},
		{"unknown runtime", fibSource, []EvaluateOption{WithRuntime(entities.RuntimeType(7))}, "Invalid runtime type: 7"},
		{"no main", noMainSource, nil, "No main function found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			e, fake, _ := newTestEngine(t)
			book := mustParse(t, e, tt.source)

			_, err := book.Evaluate(ctx, tt.opts...)
			testutil.RequireInteropError(t, err, "book_evaluate", tt.wantMsg)

			assert.Zero(t, fake.Calls(hvmtest.CallFreeEvaluationResult))
			assert.False(t, book.Released())

			require.NoError(t, book.Close())
			fake.AssertClean(t)
		})
	}
}

func TestEvaluate_CRuntime(t *testing.T) {
	e, fake, _ := newTestEngine(t, hvmtest.WithCRuntime())
	book := mustParse(t, e, fibSource)
	defer book.Close()

	res, err := book.Evaluate(context.Background(), WithRuntime(entities.RuntimeC))
	require.NoError(t, err)
	assert.Equal(t, "#3", res.Result)
	assert.Equal(t, 1, fake.Calls(hvmtest.CallFreeEvaluationResult))
}

func TestEvaluate_MemDump(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	book := mustParse(t, e, fibSource)
	defer book.Close()

	off, err := book.Evaluate(ctx)
	require.NoError(t, err)
	assert.Empty(t, off.MemDump)
	assert.False(t, off.HasMemDump())
	assert.Contains(t, off.String(), "MemDump = <empty>")

	on, err := book.Evaluate(ctx, WithMemDump(true))
	require.NoError(t, err)
	assert.True(t, on.HasMemDump())
	assert.Contains(t, on.MemDump, "@main")
	assert.Contains(t, on.String(), "MemDump = \n"+on.MemDump)
}

func TestEvaluate_ResultsAreIndependent(t *testing.T) {
	ctx := context.Background()
	e, fake, _ := newTestEngine(t)
	book := mustParse(t, e, fibSource)
	defer book.Close()

	first, err := book.Evaluate(ctx)
	require.NoError(t, err)
	second, err := book.Evaluate(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, fake.Calls(hvmtest.CallFreeEvaluationResult))
	assert.Zero(t, fake.OutstandingByKind(entities.ResourceEvaluationResult))
	assert.Equal(t, "#3", first.Result)
}

func TestEvaluate_InvalidUTF8IsReplaced(t *testing.T) {
	e, fake, _ := newTestEngine(t, hvmtest.WithResult([]byte("ok \xff\xfe end")))
	book := mustParse(t, e, fibSource)
	defer book.Close()

	res, err := book.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok \uFFFD\uFFFD end", res.Result)
	assert.Empty(t, fake.Violations())
}

func TestEvaluate_ZeroDuration(t *testing.T) {
	e, _, _ := newTestEngine(t, hvmtest.WithSeconds(0))
	book := mustParse(t, e, fibSource)
	defer book.Close()

	res, err := book.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Duration)
	assert.Zero(t, res.IterationsPerSecond())
}
