// Package bench drives a wake collection from many goroutines at once: most
// steps register a handle, every WakeEvery-th step wakes all of them.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/bakalover/sack/wake"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrLostHandles = errors.New("handles lost")

type Result struct {
	Target  string
	Added   int64
	Woken   int64
	Elapsed time.Duration
}

func (r Result) String() string {
	return fmt.Sprintf("target=%s added=%d woken=%d elapsed=%v", r.Target, r.Added, r.Woken, r.Elapsed)
}

// Run returns ErrLostHandles if the final count of woken handles differs
// from the number registered.
func Run(ctx context.Context, c *Config, logger *logrus.Logger, m *Metrics) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	coll, err := NewCollection(c.Target)
	if err != nil {
		return Result{}, err
	}

	var (
		counter atomic.Uint64
		added   atomic.Int64
		woken   atomic.Int64
	)
	wakeAll := func() {
		n := coll.WakeAll()
		woken.Add(int64(n))
		if m != nil {
			m.HandlesWoken.WithLabelValues(c.Target).Add(float64(n))
			m.WakeBatch.WithLabelValues(c.Target).Observe(float64(n))
		}
	}

	log := logger.WithFields(logrus.Fields{
		"target":     c.Target,
		"workers":    c.Workers,
		"iterations": c.Iterations,
	})
	log.Info("benchmark started")

	start := time.Now()
	eg, ctx := errgroup.WithContext(ctx)
	for range c.Workers {
		eg.Go(func() error {
			for range c.Iterations {
				if err := ctx.Err(); err != nil {
					return err
				}
				if counter.Add(1)%uint64(c.WakeEvery) == 0 {
					wakeAll()
					continue
				}
				coll.Add(wake.Noop{})
				added.Add(1)
				if m != nil {
					m.HandlesAdded.WithLabelValues(c.Target).Inc()
				}
			}
			return nil
		})
	}
	err = eg.Wait()
	wakeAll()

	r := Result{
		Target:  c.Target,
		Added:   added.Load(),
		Woken:   woken.Load(),
		Elapsed: time.Since(start),
	}
	if err != nil {
		log.WithError(err).Warn("benchmark interrupted")
		return r, fmt.Errorf("run %s: %w", c.Target, err)
	}
	if r.Added != r.Woken {
		log.WithFields(logrus.Fields{"added": r.Added, "woken": r.Woken}).Error("handle accounting mismatch")
		return r, fmt.Errorf("%w: added %d, woken %d", ErrLostHandles, r.Added, r.Woken)
	}
	log.WithField("elapsed", r.Elapsed).Info("benchmark finished")
	return r, nil
}
