// Package metrics defines the Prometheus collectors exported by the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "landtax"

// Assessment sources.
const (
	SourcePreview = "preview"
	SourceCreate  = "create"
	SourceUpdate  = "update"
)

// Payment outcomes.
const (
	OutcomePaid     = "paid"
	OutcomeConflict = "conflict"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var (
	httpDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	amountBuckets       = []float64{0, 500, 1000, 2500, 5000, 10000, 25000, 50000, 100000}
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	assessmentsTotal    *prometheus.CounterVec
	assessedAmount      prometheus.Histogram
	defaultedFields     *prometheus.CounterVec
	paymentsTotal       *prometheus.CounterVec
	amountCollected     prometheus.Counter
}

// New creates a registry with Go and process collectors plus the service metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests.",
		}, []string{"method", "route", "status_code"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   httpDurationBuckets,
		}, []string{"method", "route"}),
		assessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Tax assessments computed, by source.",
		}, []string{"source"}),
		assessedAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assessed_amount",
			Help:      "Final tax amount of persisted assessments.",
			Buckets:   amountBuckets,
		}),
		defaultedFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessment_defaulted_fields_total",
			Help:      "Input fields replaced by a default during normalization.",
		}, []string{"field"}),
		paymentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Payment attempts, by outcome.",
		}, []string{"outcome"}),
		amountCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "amount_collected_total",
			Help:      "Sum of tax amounts marked paid.",
		}),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.assessmentsTotal,
		m.assessedAmount,
		m.defaultedFields,
		m.paymentsTotal,
		m.amountCollected,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP records one completed request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveAssessment records a computed assessment. Amounts are only
// recorded for persisted sources; previews would skew the distribution.
func (m *Metrics) ObserveAssessment(source string, amount int64, defaulted []string) {
	if m == nil {
		return
	}
	m.assessmentsTotal.WithLabelValues(source).Inc()
	if source != SourcePreview {
		m.assessedAmount.Observe(float64(amount))
	}
	for _, field := range defaulted {
		m.defaultedFields.WithLabelValues(field).Inc()
	}
}

// ObservePayment records a payment attempt and, when paid, the amount.
func (m *Metrics) ObservePayment(outcome string, amount int64) {
	if m == nil {
		return
	}
	m.paymentsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomePaid {
		m.amountCollected.Add(float64(amount))
	}
}
