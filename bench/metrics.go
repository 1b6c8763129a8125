package bench

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	HandlesAdded *prometheus.CounterVec
	HandlesWoken *prometheus.CounterVec
	WakeBatch    *prometheus.HistogramVec
}

func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HandlesAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sack_handles_added_total",
				Help: "Total number of handles registered",
			},
			[]string{"target"},
		),
		HandlesWoken: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sack_handles_woken_total",
				Help: "Total number of handles woken",
			},
			[]string{"target"},
		),
		WakeBatch: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sack_wake_batch_size",
				Help:    "Number of handles woken by one WakeAll",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"target"},
		),
	}
	registry.MustRegister(m.HandlesAdded, m.HandlesWoken, m.WakeBatch)
	return m
}
