package bench_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bakalover/sack/bench"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRun(t *testing.T) {
	for _, target := range []string{bench.TargetSack, bench.TargetLocked} {
		t.Run(target, func(t *testing.T) {
			defer goleak.VerifyNone(t)
			c := bench.DefaultConfig()
			c.Target = target
			c.Iterations = 10_000
			registry := prometheus.NewRegistry()
			m := bench.NewMetrics(registry)

			r, err := bench.Run(context.Background(), c, logrus.New(), m)
			require.NoError(t, err)
			assert.Equal(t, target, r.Target)
			assert.Equal(t, r.Added, r.Woken)
			// Every WakeEvery-th global step wakes instead of adding
			total := int64(c.Workers * c.Iterations)
			assert.Equal(t, total-total/int64(c.WakeEvery), r.Added)
			assert.Equal(t, float64(r.Added), testutil.ToFloat64(m.HandlesAdded.WithLabelValues(target)))
			assert.Equal(t, float64(r.Woken), testutil.ToFloat64(m.HandlesWoken.WithLabelValues(target)))
		})
	}

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r, err := bench.Run(ctx, bench.DefaultConfig(), nil, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, r.Added, r.Woken)
	})

	t.Run("Invalid config", func(t *testing.T) {
		c := bench.DefaultConfig()
		c.Target = "ring"
		_, err := bench.Run(context.Background(), c, nil, nil)
		assert.ErrorIs(t, err, bench.ErrUnknownTarget)
	})
}

func TestConfig(t *testing.T) {
	t.Run("Defaults are valid", func(t *testing.T) {
		assert.NoError(t, bench.DefaultConfig().Validate())
	})

	t.Run("Validate", func(t *testing.T) {
		c := bench.DefaultConfig()
		c.Workers = 0
		assert.ErrorIs(t, c.Validate(), bench.ErrInvalidConfig)
		c = bench.DefaultConfig()
		c.WakeEvery = 0
		assert.ErrorIs(t, c.Validate(), bench.ErrInvalidConfig)
		c = bench.DefaultConfig()
		c.Iterations = -1
		assert.ErrorIs(t, c.Validate(), bench.ErrInvalidConfig)
	})

	t.Run("Decode overlays defaults", func(t *testing.T) {
		c := bench.DefaultConfig()
		require.NoError(t, c.Decode(strings.NewReader("workers: 8\ntarget: locked\n")))
		assert.Equal(t, 8, c.Workers)
		assert.Equal(t, bench.TargetLocked, c.Target)
		assert.Equal(t, 16, c.WakeEvery)
	})

	t.Run("Decode is strict", func(t *testing.T) {
		c := bench.DefaultConfig()
		err := c.Decode(strings.NewReader("workers: 8\nthreads: 2\n"))
		assert.ErrorIs(t, err, bench.ErrInvalidConfig)
	})

	t.Run("Load file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bench.yaml")
		require.NoError(t, os.WriteFile(path, []byte("iterations: 50\nwake_every: 4\n"), 0o644))
		c, err := bench.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 50, c.Iterations)
		assert.Equal(t, 4, c.WakeEvery)

		_, err = bench.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func BenchmarkWakeSet(b *testing.B) {
	benchmarkTarget(b, bench.TargetSack)
}

func BenchmarkLockedSlice(b *testing.B) {
	benchmarkTarget(b, bench.TargetLocked)
}

func benchmarkTarget(b *testing.B, target string) {
	c := bench.DefaultConfig()
	c.Target = target
	c.Iterations = b.N
	b.ResetTimer()
	if _, err := bench.Run(context.Background(), c, nil, nil); err != nil {
		b.Fatal(err)
	}
}
