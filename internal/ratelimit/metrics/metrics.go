package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments of the admission controller.
type Metrics struct {
	Admitted       prometheus.Counter
	Denied         prometheus.Counter
	StoreFallbacks prometheus.Counter
}

// New creates and registers the admission control metrics.
func New() *Metrics {
	return &Metrics{
		Admitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jce_ratelimit_admitted_total",
			Help: "Requests admitted by the rate limiter",
		}),
		Denied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jce_ratelimit_denied_total",
			Help: "Requests denied by the rate limiter",
		}),
		StoreFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jce_ratelimit_store_fallbacks_total",
			Help: "Admission checks served by the in-memory fallback because the shared store failed",
		}),
	}
}
