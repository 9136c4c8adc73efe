package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the API client.
type Metrics struct {
	Registry             *prometheus.Registry
	RequestsTotal        *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	ProductsFetchedTotal prometheus.Counter
	RetriesTotal         prometheus.Counter
	ErrorsTotal          *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_requests_total",
			Help: "Total API requests issued, by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_request_duration_seconds",
			Help:    "API request latency per attempt.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	productsFetched := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_products_fetched_total",
			Help: "Total number of normalized products returned to callers.",
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_retries_total",
			Help: "Total number of retry attempts issued.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_errors_total",
			Help: "Total number of failed attempts by error type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, productsFetched, retries, errorsTotal)

	return &Metrics{
		Registry:             registry,
		RequestsTotal:        requests,
		RequestDuration:      requestDuration,
		ProductsFetchedTotal: productsFetched,
		RetriesTotal:         retries,
		ErrorsTotal:          errorsTotal,
	}
}

// IncRequest increments the requests counter.
func (m *Metrics) IncRequest(op, outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(op, outcome).Inc()
}

// ObserveDuration records one attempt's latency.
func (m *Metrics) ObserveDuration(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(op).Observe(d.Seconds())
}

// AddProducts counts products handed to callers.
func (m *Metrics) AddProducts(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ProductsFetchedTotal.Add(float64(n))
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
