// Package metrics exposes the prometheus counters of the trust layer.
package metrics

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Namespace = "hybrid"

	MetricFilterRequests = "trusted_filter_requests_total"
	MetricRemoteLookups  = "remote_identity_lookups_total"

	DefaultPath = "/metrics"
)

type MonitoringConf struct {
	Metrics bool   `json:"metrics" yaml:"metrics"`
	Path    string `json:"path" yaml:"path"`
}

// Counter counts outcomes by a single `result` label. A nil Counter is a no-op.
type Counter struct {
	vec *prometheus.CounterVec
}

func newCounter(name, help string) *Counter {
	return &Counter{vec: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      name,
			Help:      help,
		},
		[]string{"result"},
	)}
}

func (c *Counter) Inc(result string) {
	if c == nil {
		return
	}
	c.vec.WithLabelValues(result).Inc()
}

// With returns the underlying counter for the result, mostly for tests.
func (c *Counter) With(result string) prometheus.Counter {
	return c.vec.WithLabelValues(result)
}

type Metrics struct {
	Filter *Counter
	Remote *Counter

	gatherer prometheus.Gatherer
}

// NewMetrics registers the counters in reg. Pass prometheus.NewRegistry() in
// tests to keep them isolated from the default registry.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		Filter: newCounter(MetricFilterRequests,
			"Requests seen by the trusted token filter, by outcome."),
		Remote: newCounter(MetricRemoteLookups,
			"Lookups of the remote identity bound to the tracking cookie, by outcome."),
		gatherer: reg,
	}

	for _, c := range []*Counter{m.Filter, m.Remote} {
		if err := reg.Register(c.vec); err != nil {
			return nil, errors.Wrap(err, "unable to register collector")
		}
	}
	return m, nil
}

// GetMonitoringMux serves the registry of m when monitoring is enabled.
func GetMonitoringMux(cfg MonitoringConf, m *Metrics) http.Handler {
	r := chi.NewRouter()
	if !cfg.Metrics || m == nil {
		return r
	}

	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	r.Handle(path, promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
	return r
}
