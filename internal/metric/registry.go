package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns a private Prometheus registry with the service metrics and
// the Go runtime and process collectors.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
}

// NewRegistry creates a registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	m := NewMetrics()

	reg.MustRegister(m.collectors()...)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Registry{
		prometheusRegistry: reg,
		Metrics:            m,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.prometheusRegistry, promhttp.HandlerOpts{
		Registry: r.prometheusRegistry,
	})
}
