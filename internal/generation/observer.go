package generation

import "sync/atomic"

// Observer receives every published state.
//
// OnState runs synchronously on the goroutine that called Generate while
// deliveries are serialized, so it must not call Generate itself.
type Observer interface {
	OnState(State)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(State)

// OnState calls f(s).
func (f ObserverFunc) OnState(s State) { f(s) }

// Subscription is returned by Subscribe.
type Subscription struct {
	coordinator *Coordinator
	observer    Observer
	active      atomic.Bool
}

// Unsubscribe stops further deliveries. It is safe to call more than once
// and from inside OnState.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active.CompareAndSwap(true, false) {
		return
	}
	s.coordinator.remove(s)
}
