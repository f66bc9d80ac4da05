package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvm-interop/hvm-go/domain/entities"
)

func TestObserver_LifecycleEvents(t *testing.T) {
	o := NewObserver(nil)

	o.OnLifecycleEvent(entities.LifecycleEvent{Kind: entities.ResourceBook, Type: entities.EventAllocated})
	o.OnLifecycleEvent(entities.LifecycleEvent{Kind: entities.ResourceBook, Type: entities.EventAllocated})
	o.OnLifecycleEvent(entities.LifecycleEvent{Kind: entities.ResourceBook, Type: entities.EventReleased})
	o.OnLifecycleEvent(entities.LifecycleEvent{Kind: entities.ResourceBook, Type: entities.EventReleased})
	o.OnLifecycleEvent(entities.LifecycleEvent{Kind: entities.ResourceBook, Type: entities.EventFinalized})

	assert.Equal(t, 2.0, testutil.ToFloat64(o.events.WithLabelValues("book", "allocated")))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.events.WithLabelValues("book", "released")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.events.WithLabelValues("book", "finalized")))
	assert.Equal(t, 0.0, testutil.ToFloat64(o.live.WithLabelValues("book")))
}

func TestObserver_ObserveEvaluation(t *testing.T) {
	o := NewObserver(nil)

	o.ObserveEvaluation(entities.RuntimeRust, entities.EvaluationResult{Iterations: 1500, Duration: 2 * time.Millisecond}, nil)
	o.ObserveEvaluation(entities.RuntimeC, entities.EvaluationResult{}, errors.New("C runtime not supported"))

	assert.Equal(t, 1.0, testutil.ToFloat64(o.evaluations.WithLabelValues("rust", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.evaluations.WithLabelValues("c", "error")))
	assert.Equal(t, 1500.0, testutil.ToFloat64(o.iterations.WithLabelValues("rust")))
}

func TestObserver_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg)
	o.OnLifecycleEvent(entities.LifecycleEvent{Kind: entities.ResourceVec, Type: entities.EventAllocated})

	expected := `
# HELP hvm_native_resources_live Native allocations currently owned by the host.
# TYPE hvm_native_resources_live gauge
hvm_native_resources_live{kind="vec"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "hvm_native_resources_live"))
}
