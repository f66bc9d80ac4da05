package hvm

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hvm-interop/hvm-go/domain/entities"
	"github.com/hvm-interop/hvm-go/testing/hvmtest"
)

const fibSource = `@fib = (?(((a 0) @fib__C0) a) a)
@fib__C0 = ({a b} c)
  & @fib ~ (a d)
  & @fib ~ (b e)
  & $(d $([+] e c))
@main = a
  & @fib ~ (20 a)
`

const noMainSource = "@loop = (?((0 @loop) a) a)\n"

type recordingObserver struct {
	mu     sync.Mutex
	events []entities.LifecycleEvent
}

func (r *recordingObserver) OnLifecycleEvent(ev entities.LifecycleEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingObserver) Events() []entities.LifecycleEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.LifecycleEvent(nil), r.events...)
}

func (r *recordingObserver) Count(kind entities.ResourceKind, typ entities.LifecycleEventType) int {
	n := 0
	for _, ev := range r.Events() {
		if ev.Kind == kind && ev.Type == typ {
			n++
		}
	}
	return n
}

func newTestEngine(t *testing.T, opts ...hvmtest.Option) (*Engine, *hvmtest.Boundary, *recordingObserver) {
	t.Helper()
	fake := hvmtest.New(opts...)
	obs := &recordingObserver{}
	return New(fake, WithObserver(obs)), fake, obs
}

func mustParse(t *testing.T, e *Engine, source string) *Book {
	t.Helper()
	book, err := e.Parse(context.Background(), source)
	require.NoError(t, err)
	require.NotNil(t, book)
	return book
}
