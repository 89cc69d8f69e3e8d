// Package metric collects per-component counters for the copy engine:
// periods executed, bytes consumed and produced, warm-up periods spent
// feeding silence and the latency between consecutive period calls.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MeasureFunc captures metrics when one period has been processed.
type MeasureFunc func(consumed, produced int)

// ResetFunc returns a new MeasureFunc. The closure postpones metric capture
// until the component is actually running.
type ResetFunc func() MeasureFunc

// Metrics holds the collectors for all components of one pipeline.
type Metrics struct {
	periods  *prometheus.CounterVec
	consumed *prometheus.CounterVec
	produced *prometheus.CounterVec
	warmup   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		periods: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sof_component_periods_total",
			Help: "Processing periods executed per component.",
		}, []string{"component"}),
		consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sof_component_consumed_bytes_total",
			Help: "Bytes consumed from source buffers per component.",
		}, []string{"component"}),
		produced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sof_component_produced_bytes_total",
			Help: "Bytes produced into sink buffers per component.",
		}, []string{"component"}),
		warmup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sof_component_warmup_periods_total",
			Help: "Periods spent feeding silence while deep-buffering.",
		}, []string{"component"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sof_component_period_latency_seconds",
			Help:    "Latency between consecutive period calls per component.",
			Buckets: prometheus.ExponentialBuckets(100e-6, 2, 12),
		}, []string{"component"}),
	}
	if reg != nil {
		reg.MustRegister(m.periods, m.consumed, m.produced, m.warmup, m.latency)
	}
	return m
}

// Meter creates a meter closure to capture counters for one component.
func (m *Metrics) Meter(component string) ResetFunc {
	if m == nil {
		return func() MeasureFunc { return func(int, int) {} }
	}
	periods := m.periods.WithLabelValues(component)
	consumed := m.consumed.WithLabelValues(component)
	produced := m.produced.WithLabelValues(component)
	latency := m.latency.WithLabelValues(component)
	return func() MeasureFunc {
		calledAt := time.Now()
		return func(c, p int) {
			latency.Observe(time.Since(calledAt).Seconds())
			periods.Inc()
			consumed.Add(float64(c))
			produced.Add(float64(p))
			calledAt = time.Now()
		}
	}
}

// Warmup counts one zero-filled warm-up period for a component.
func (m *Metrics) Warmup(component string) {
	if m == nil {
		return
	}
	m.warmup.WithLabelValues(component).Inc()
}
