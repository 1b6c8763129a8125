package infra

import (
	"cmp"
	"slices"
	"sync/atomic"

	"github.com/bakalover/sack/sack"
)

type (
	Task = func()

	ticket struct {
		seq uint64
		t   Task
	}

	// Sack order is unspecified, so tasks carry a ticket and GrabAll
	// sorts by it.
	taskQueue struct {
		s   sack.Sack[ticket]
		seq atomic.Uint64
	}
)

func (q *taskQueue) Append(t Task) {
	q.s.Add(ticket{seq: q.seq.Add(1), t: t})
}

// GrabAll takes every queued task, oldest ticket first.
func (q *taskQueue) GrabAll() []Task {
	b := q.s.Drain()
	grabbed := make([]ticket, 0, b.Len())
	for tk := range b.All() {
		grabbed = append(grabbed, tk)
	}
	slices.SortFunc(grabbed, func(a, b ticket) int {
		return cmp.Compare(a.seq, b.seq)
	})
	tasks := make([]Task, len(grabbed))
	for i, tk := range grabbed {
		tasks[i] = tk.t
	}
	return tasks
}
