package wake

import (
	"context"
	"sync/atomic"
)

// Event is a manual-reset broadcast latch built on a Set.
// Zero value is a reset event.
type Event struct {
	waiters Set
	fired   atomic.Bool
}

// Wait returns once the event is fired or ctx is done.
func (e *Event) Wait(ctx context.Context) error {
	if e.fired.Load() {
		return nil
	}
	w := NewWaker()
	defer w.Drop()
	e.waiters.AddByRef(w)
	// Fire may have drained before our Add landed
	if e.fired.Load() {
		return nil
	}
	return w.Wait(ctx)
}

// Fire sets the event and wakes every waiter. Returns how many were woken.
func (e *Event) Fire() int {
	e.fired.Store(true)
	return e.waiters.WakeAll()
}

func (e *Event) Reset() {
	e.fired.Store(false)
}

func (e *Event) IsSet() bool {
	return e.fired.Load()
}
