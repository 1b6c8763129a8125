package wake

import (
	"context"
	"sync"
	"sync/atomic"
)

type (
	// Handle resumes one suspended task.
	// Wake must be idempotent and safe to call from any goroutine.
	Handle interface {
		Wake()
		Clone() Handle
	}

	// Waker is a reference-counted Handle for a goroutine parked in Wait.
	// Every clone shares the same parking slot.
	Waker struct {
		p       *parker
		dropped atomic.Bool
	}

	parker struct {
		once sync.Once
		done chan struct{}
		refs atomic.Int64
	}
)

func NewWaker() *Waker {
	p := &parker{done: make(chan struct{})}
	p.refs.Store(1)
	return &Waker{p: p}
}

func (w *Waker) Wake() {
	w.p.once.Do(func() {
		close(w.p.done)
	})
}

func (w *Waker) Clone() Handle {
	w.p.refs.Add(1)
	return &Waker{p: w.p}
}

// Drop releases this clone's reference. Repeated calls are no-ops.
func (w *Waker) Drop() {
	if w.dropped.CompareAndSwap(false, true) {
		w.p.refs.Add(-1)
	}
}

// Refs reports how many clones have not been dropped yet.
func (w *Waker) Refs() int64 {
	return w.p.refs.Load()
}

func (w *Waker) Woken() bool {
	select {
	case <-w.p.done:
		return true
	default:
		return false
	}
}

func (w *Waker) Done() <-chan struct{} {
	return w.p.done
}

// Wait parks until some clone is woken or ctx is done.
func (w *Waker) Wait(ctx context.Context) error {
	select {
	case <-w.p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Noop is a Handle that resumes nothing.
type Noop struct{}

func (Noop) Wake() {}

func (n Noop) Clone() Handle { return n }

// Func adapts a plain function to Handle. The function must be idempotent.
type Func func()

func (f Func) Wake() { f() }

func (f Func) Clone() Handle { return f }

type dropper interface {
	Drop()
}

func release(h Handle) {
	if d, ok := h.(dropper); ok {
		d.Drop()
	}
}
