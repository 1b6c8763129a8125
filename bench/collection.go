package bench

import (
	"sync"

	"github.com/bakalover/sack/wake"
)

type (
	Collection interface {
		Add(wake.Handle)
		WakeAll() int
	}

	// LockedSlice is the mutex-and-slice baseline a wake set competes with.
	LockedSlice struct {
		mu sync.Mutex
		hs []wake.Handle
	}
)

var (
	_ Collection = (*wake.Set)(nil)
	_ Collection = (*LockedSlice)(nil)
)

func (l *LockedSlice) Add(h wake.Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hs = append(l.hs, h)
}

func (l *LockedSlice) WakeAll() int {
	l.mu.Lock()
	taken := l.hs
	l.hs = nil
	l.mu.Unlock()
	for _, h := range taken {
		h.Wake()
	}
	return len(taken)
}

func NewCollection(target string) (Collection, error) {
	switch target {
	case TargetSack:
		return wake.NewSet(), nil
	case TargetLocked:
		return &LockedSlice{}, nil
	default:
		return nil, ErrUnknownTarget
	}
}
