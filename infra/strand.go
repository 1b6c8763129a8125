// Package infra runs closures one at a time on top of a sack.
package infra

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type (
	// Strand executes combined tasks mutually exclusive with each other.
	// Tasks combined by one goroutine run in the order they were combined.
	Strand interface {
		Combine(f Task)
		Await()
	}

	Option func(*strandImpl)

	strandImpl struct {
		q       taskQueue
		refs    sync.WaitGroup
		c       atomic.Int64
		logger  *logrus.Logger
		metrics *StrandMetrics
	}

	StrandMetrics struct {
		TasksTotal prometheus.Counter
		BatchSize  prometheus.Histogram
	}
)

func WithLogger(l *logrus.Logger) Option {
	return func(s *strandImpl) {
		s.logger = l
	}
}

func WithMetrics(m *StrandMetrics) Option {
	return func(s *strandImpl) {
		s.metrics = m
	}
}

func NewStrandMetrics(registry *prometheus.Registry) *StrandMetrics {
	m := &StrandMetrics{
		TasksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sack_strand_tasks_total",
			Help: "Total number of tasks run by strands",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sack_strand_batch_size",
			Help:    "Number of tasks grabbed by one strand run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
	registry.MustRegister(m.TasksTotal, m.BatchSize)
	return m
}

func NewStrand(opts ...Option) Strand {
	s := &strandImpl{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logrus.New()
		s.logger.SetOutput(io.Discard)
	}
	return s
}

func (s *strandImpl) Combine(t Task) {
	s.q.Append(t)
	if s.c.Add(1) == 1 {
		s.goSelf()
	}
}

// Await blocks until every combined task has run.
func (s *strandImpl) Await() {
	s.refs.Wait()
}

func (s *strandImpl) runBatch() {
	done := s.runBlockingCPU(s.q.GrabAll())
	left := s.c.Add(-done)
	s.logger.WithFields(logrus.Fields{
		"done": done,
		"left": left,
	}).Debug("strand batch finished")
	if left > 0 {
		s.goSelf()
	}
}

func (s *strandImpl) runBlockingCPU(b []Task) int64 {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	for _, t := range b {
		t()
	}
	if s.metrics != nil {
		s.metrics.TasksTotal.Add(float64(len(b)))
		s.metrics.BatchSize.Observe(float64(len(b)))
	}
	return int64(len(b))
}

func (s *strandImpl) goSelf() {
	s.refs.Add(1)
	go func() {
		defer s.refs.Done()
		s.runBatch()
	}()
}
