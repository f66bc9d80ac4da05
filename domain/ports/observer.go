package ports

import "github.com/hvm-interop/hvm-go/domain/entities"

// LifecycleObserver receives a notification for every native allocation the
// binding layer takes ownership of or releases.
type LifecycleObserver interface {
	OnLifecycleEvent(entities.LifecycleEvent)
}

// LifecycleObserverFunc adapts a function to LifecycleObserver.
type LifecycleObserverFunc func(entities.LifecycleEvent)

// OnLifecycleEvent implements LifecycleObserver.
func (f LifecycleObserverFunc) OnLifecycleEvent(e entities.LifecycleEvent) {
	f(e)
}
