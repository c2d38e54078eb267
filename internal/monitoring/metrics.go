// Package monitoring provides Prometheus metrics for pipe-mode streams.
//
// Expose them from a host with the standard endpoint:
//
//	reg := prometheus.NewRegistry()
//	metrics := monitoring.New(reg)
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for record streaming.
type Metrics struct {
	// Per-stream record flow
	RecordsRead  *prometheus.CounterVec
	BytesRead    *prometheus.CounterVec
	ReadDuration *prometheus.HistogramVec

	// Failures
	CorruptRecords *prometheus.CounterVec

	// Pipe lifecycle
	PipesOpened   *prometheus.CounterVec
	StreamsActive prometheus.Gauge
}

// New creates a metrics collector registered on reg. A nil reg falls back
// to the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RecordsRead: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipemode_records_read_total",
				Help: "Records delivered to the consumer",
			},
			[]string{"channel", "format"},
		),
		BytesRead: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipemode_bytes_read_total",
				Help: "Record payload bytes delivered to the consumer",
			},
			[]string{"channel", "format"},
		),
		ReadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipemode_read_duration_seconds",
				Help:    "Time spent pulling one record, including pipe waits",
				Buckets: []float64{.0001, .001, .01, .1, .5, 1, 5, 30, 120},
			},
			[]string{"channel", "format"},
		),
		CorruptRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipemode_corrupt_records_total",
				Help: "Streams terminated by framing or checksum failures",
			},
			[]string{"channel", "format"},
		),
		PipesOpened: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipemode_pipes_opened_total",
				Help: "Pipes opened for reading",
			},
			[]string{"channel"},
		),
		StreamsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipemode_streams_active",
				Help: "Record streams currently open",
			},
		),
	}
}

// ObserveRead records one successful record delivery.
func (m *Metrics) ObserveRead(channel, format string, bytes int, elapsed time.Duration) {
	m.RecordsRead.WithLabelValues(channel, format).Inc()
	m.BytesRead.WithLabelValues(channel, format).Add(float64(bytes))
	m.ReadDuration.WithLabelValues(channel, format).Observe(elapsed.Seconds())
}
