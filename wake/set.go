// Package wake holds resumption handles of parked goroutines so they can
// all be resumed in one go.
//
// Set is a sack of Handles. WakeAll drains first and wakes afterwards, so a
// woken goroutine that re-registers itself lands in the fresh set and is not
// seen by the WakeAll that woke it.
package wake

import (
	"github.com/bakalover/sack/sack"
)

// Zero value is an empty set, ready to use.
type Set struct {
	s sack.Sack[Handle]
}

func NewSet() *Set {
	return &Set{}
}

func (s *Set) Add(h Handle) {
	s.s.Add(h)
}

// AddByRef stores a clone, the caller keeps h.
func (s *Set) AddByRef(h Handle) {
	s.s.Add(h.Clone())
}

// WakeAll wakes every handle present at the moment of the call exactly once
// and returns how many it woke.
func (s *Set) WakeAll() int {
	count := 0
	b := s.s.Drain()
	for h := range b.All() {
		h.Wake()
		release(h)
		count++
	}
	return count
}

// Clear drops every handle without waking it.
func (s *Set) Clear() int {
	count := 0
	b := s.s.Drain()
	for h := range b.All() {
		release(h)
		count++
	}
	return count
}

func (s *Set) IsEmpty() bool {
	return s.s.IsEmpty()
}

// Wake makes a Set usable as a Handle of another Set.
func (s *Set) Wake() {
	s.WakeAll()
}

// Clone returns s itself: sets are shared by pointer.
func (s *Set) Clone() Handle {
	return s
}

// Close wakes whatever is still registered so nobody stays parked on a set
// that is going away.
func (s *Set) Close() error {
	s.WakeAll()
	return nil
}
