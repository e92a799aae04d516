// Package metrics exposes Prometheus counters for scans and extractions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "receipt"

// Outcome labels for scans
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder holds the collectors registered for one process
type Recorder struct {
	registry *prometheus.Registry

	scans            *prometheus.CounterVec
	scanDuration     *prometheus.HistogramVec
	extractions      prometheus.Counter
	emptyExtractions prometheus.Counter
	products         prometheus.Histogram
}

// New builds a Recorder on its own registry, with the Go and process collectors included
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Receipt images sent to an OCR engine.",
		}, []string{"engine", "outcome"}),
		scanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Time spent in the OCR engine.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"engine"}),
		extractions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "OCR texts turned into receipt records.",
		}),
		emptyExtractions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_empty_total",
			Help:      "Extractions that found no products.",
		}),
		products: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extracted_products",
			Help:      "Products found per extraction.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.scans,
		r.scanDuration,
		r.extractions,
		r.emptyExtractions,
		r.products,
	)
	return r
}

// ObserveScan records one OCR call
func (r *Recorder) ObserveScan(engine string, elapsed time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	r.scans.WithLabelValues(engine, outcome).Inc()
	r.scanDuration.WithLabelValues(engine).Observe(elapsed.Seconds())
}

// ObserveExtraction records how many products one extraction produced
func (r *Recorder) ObserveExtraction(products int) {
	r.extractions.Inc()
	r.products.Observe(float64(products))
	if products == 0 {
		r.emptyExtractions.Inc()
	}
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
