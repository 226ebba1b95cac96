// Package prom implements the observability hooks with Prometheus
// collectors.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/strata/pkg/observability"
)

// Metrics holds the collectors and implements every hook interface.
type Metrics struct {
	workflows        *prometheus.CounterVec
	workflowDuration *prometheus.HistogramVec
	warnings         *prometheus.CounterVec
	cacheEvents      *prometheus.CounterVec
	cacheBytes       *prometheus.CounterVec
	samples          *prometheus.CounterVec
	sampleDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		workflows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strata_workflows_total",
			Help: "Completed workflow runs by workflow and outcome.",
		}, []string{"workflow", "outcome"}),
		workflowDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "strata_workflow_duration_seconds",
			Help:    "Workflow run durations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"workflow"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strata_warnings_total",
			Help: "Non-fatal numeric warnings by workflow and code.",
		}, []string{"workflow", "code"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strata_cache_events_total",
			Help: "Cache lookups and writes by key type and event.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strata_cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}, []string{"key_type"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strata_grid_sampled_points_total",
			Help: "Points sampled per grid reference.",
		}, []string{"ref", "outcome"}),
		sampleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "strata_grid_sample_duration_seconds",
			Help:    "Duration of grid sampling calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"ref"}),
	}
	for _, c := range []prometheus.Collector{
		m.workflows, m.workflowDuration, m.warnings,
		m.cacheEvents, m.cacheBytes, m.samples, m.sampleDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Install registers m as the global workflow, cache and sampler hooks.
func (m *Metrics) Install() {
	observability.SetWorkflowHooks(m)
	observability.SetCacheHooks(m)
	observability.SetSamplerHooks(m)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnWorkflowStart(context.Context, string, string) {}

func (m *Metrics) OnWorkflowComplete(_ context.Context, workflow, _ string, _ int, d time.Duration, err error) {
	m.workflows.WithLabelValues(workflow, outcome(err)).Inc()
	m.workflowDuration.WithLabelValues(workflow).Observe(d.Seconds())
}

func (m *Metrics) OnWarning(_ context.Context, workflow, code string, _ float64) {
	m.warnings.WithLabelValues(workflow, code).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnSample(_ context.Context, ref string, points int, d time.Duration, err error) {
	m.samples.WithLabelValues(ref, outcome(err)).Add(float64(points))
	m.sampleDuration.WithLabelValues(ref).Observe(d.Seconds())
}

var (
	_ observability.WorkflowHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.SamplerHooks  = (*Metrics)(nil)
)
