// Package sack provides a lock-free, unordered collection that many
// goroutines can add to while a consumer drains everything at once.
//
// A Sack is a singly-linked chain hanging off one atomic head. Add pushes a
// fresh node with a CAS loop, Drain swaps the head with nil and takes the
// whole chain. Because a drained chain is never relinked, a node is reachable
// either from the head or from exactly one Batch, never from both.
package sack

import (
	"iter"
	"sync/atomic"
)

type (
	// Zero value is an empty sack, ready to use.
	Sack[T any] struct {
		head atomic.Pointer[node[T]]
	}

	node[T any] struct {
		v    T
		next *node[T] // Written only before the node is published
	}

	// Batch owns the chain detached by a single Drain.
	// It is not safe for concurrent use.
	Batch[T any] struct {
		head *node[T]
	}
)

func New[T any]() *Sack[T] {
	return &Sack[T]{}
}

// Add is lock-free, not wait-free: under contention it retries with the
// head it lost to.
func (s *Sack[T]) Add(v T) {
	n := &node[T]{v: v}
	for {
		n.next = s.head.Load()
		if s.head.CompareAndSwap(n.next, n) {
			return
		}
	}
}

// Drain detaches every element present at the moment of the call.
// Concurrent drains receive disjoint batches. Element order is unspecified.
func (s *Sack[T]) Drain() Batch[T] {
	return Batch[T]{head: s.head.Swap(nil)}
}

// IsEmpty is a snapshot; concurrent Adds may change the answer immediately.
func (s *Sack[T]) IsEmpty() bool {
	return s.head.Load() == nil
}

func (b *Batch[T]) IsNotEmpty() bool {
	return b.head != nil
}

// Pop removes one element. Calling it on an empty batch panics.
func (b *Batch[T]) Pop() T {
	if b.head == nil {
		panic("sack: Pop on empty batch")
	}
	v, _ := b.Next()
	return v
}

func (b *Batch[T]) Next() (T, bool) {
	n := b.head
	if n == nil {
		var zero T
		return zero, false
	}
	b.head, n.next = n.next, nil
	return n.v, true
}

// All yields and removes elements one at a time. Breaking out of the loop
// leaves the rest in the batch.
func (b *Batch[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := b.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Len counts the remaining elements without consuming them.
func (b *Batch[T]) Len() int {
	count := 0
	for n := b.head; n != nil; n = n.next {
		count++
	}
	return count
}

// Discard releases the remaining elements and reports how many there were.
func (b *Batch[T]) Discard() int {
	count := 0
	for b.IsNotEmpty() {
		b.Next()
		count++
	}
	return count
}
