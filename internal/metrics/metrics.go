// Package metrics exposes bus and render manager activity as Prometheus
// metrics on a private registry.
package metrics

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/dshills/chartkit/internal/event/topic"
)

const namespace = "chartkit"

// Collector implements event.Observer and render.Observer.
type Collector struct {
	registry *prometheus.Registry

	emits        *prometheus.CounterVec
	handlerCalls *prometheus.CounterVec
	flushes      prometheus.Counter
	renders      prometheus.Counter
	pending      prometheus.Gauge
	flushSeconds prometheus.Histogram
}

// New creates a collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		emits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "emits_total",
			Help:      "Events emitted, by topic namespace.",
		}, []string{"namespace"}),
		handlerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "handler_calls_total",
			Help:      "Handlers invoked, by topic namespace.",
		}, []string{"namespace"}),
		flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "flushes_total",
			Help:      "Render flushes that rendered at least one pair.",
		}),
		renders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "calls_total",
			Help:      "Render calls made by flushes.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "pending",
			Help:      "Dirty pairs waiting for the next flush.",
		}),
		flushSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "flush_seconds",
			Help:      "Duration of render flushes in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	c.registry.MustRegister(c.emits, c.handlerCalls, c.flushes, c.renders, c.pending, c.flushSeconds)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveEmit counts one emit and its handler calls. Topics are labelled by
// their first segment so per-instance topic names stay out of the label set.
func (c *Collector) ObserveEmit(name topic.Topic, handlers int) {
	ns := "none"
	if segs := name.Segments(); len(segs) > 0 && segs[0] != "" {
		ns = segs[0]
	}
	c.emits.WithLabelValues(ns).Inc()
	c.handlerCalls.WithLabelValues(ns).Add(float64(handlers))
}

// ObserveFlush records one flush.
func (c *Collector) ObserveFlush(rendered int, d time.Duration) {
	c.flushes.Inc()
	c.renders.Add(float64(rendered))
	c.flushSeconds.Observe(d.Seconds())
}

// ObservePending records the number of pending pairs.
func (c *Collector) ObservePending(pending int) {
	c.pending.Set(float64(pending))
}

// WriteText writes every metric in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "write metrics")
		}
	}
	return nil
}
