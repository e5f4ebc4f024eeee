package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments of the consultation pipeline.
type Metrics struct {
	Exitosas         prometheus.Counter
	Errores          *prometheus.CounterVec
	CedulasInvalidas prometheus.Counter
	NoEncontrados    prometheus.Counter
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	Duracion         prometheus.Histogram
}

// New creates and registers the consultation metrics.
func New() *Metrics {
	return &Metrics{
		Exitosas: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jce_consultas_exitosas_total",
			Help: "Consultations answered with citizen data",
		}),
		Errores: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "jce_consultas_errores_total",
			Help: "Consultations that failed, by result code",
		}, []string{"codigo"}),
		CedulasInvalidas: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jce_consultas_cedulas_invalidas_total",
			Help: "Consultations rejected for malformed cédulas",
		}),
		NoEncontrados: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jce_consultas_no_encontrados_total",
			Help: "Consultations for cédulas unknown to the registry",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jce_consultas_cache_hits_total",
			Help: "Consultations served from the record cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jce_consultas_cache_misses_total",
			Help: "Consultations that had to reach the data portal",
		}),
		Duracion: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "jce_consultas_duracion_segundos",
			Help:    "End to end consultation latency",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 25},
		}),
	}
}
