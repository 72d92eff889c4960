// Package metrics exposes Prometheus metrics for the acquisition loops.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Enabled turns metric recording on. When false every Record* call is a
	// no-op, so callers never need nil checks.
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix. Default: "skywatch".
	Namespace string `yaml:"namespace"`
}

// Collector records acquisition metrics. One collector serves every loop;
// series are partitioned by a "loop" label.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	cyclesTotal     *prometheus.CounterVec
	acquireDuration *prometheus.HistogramVec
	artifactBytes   *prometheus.GaugeVec
	evictionsTotal  *prometheus.CounterVec
	lastSuccess     *prometheus.GaugeVec
}

// NewCollector creates a collector registered against registry. If registry
// is nil a private registry is created; Registry returns it for serving.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "skywatch"
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
		cyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "cycles_total",
			Help:      "Acquisition cycles by loop and outcome.",
		}, []string{"loop", "outcome"}),
		acquireDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "acquire_duration_seconds",
			Help:      "Duration of the fetch/capture step.",
			// Tile fetches finish in well under a second on a good link;
			// camera captures can take tens of seconds.
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"loop"}),
		artifactBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "last_artifact_bytes",
			Help:      "Size of the most recently stored artifact.",
		}, []string{"loop"}),
		evictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "evictions_total",
			Help:      "Artifacts evicted by retention passes.",
		}, []string{"loop"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successfully stored artifact.",
		}, []string{"loop"}),
	}

	if cfg.Enabled {
		registry.MustRegister(
			c.cyclesTotal,
			c.acquireDuration,
			c.artifactBytes,
			c.evictionsTotal,
			c.lastSuccess,
		)
	}

	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordCycle records one completed cycle.
func (c *Collector) RecordCycle(loop, outcome string, acquireDuration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.cyclesTotal.WithLabelValues(loop, outcome).Inc()
	if acquireDuration > 0 {
		c.acquireDuration.WithLabelValues(loop).Observe(acquireDuration.Seconds())
	}
}

// RecordStored records a successfully stored artifact.
func (c *Collector) RecordStored(loop string, sizeBytes int64, at time.Time) {
	if !c.config.Enabled {
		return
	}
	c.artifactBytes.WithLabelValues(loop).Set(float64(sizeBytes))
	c.lastSuccess.WithLabelValues(loop).Set(float64(at.Unix()))
}

// RecordEvictions records artifacts removed by a retention pass.
func (c *Collector) RecordEvictions(loop string, count int) {
	if !c.config.Enabled || count == 0 {
		return
	}
	c.evictionsTotal.WithLabelValues(loop).Add(float64(count))
}
