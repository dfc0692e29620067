// Package metrics holds the Prometheus collectors for the ranker.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ranker"

// Outcome label values.
const (
	OutcomeRanked   = "ranked"
	OutcomeRejected = "rejected"
)

// Metrics contains the collectors. All methods are safe for concurrent use
// and are no-ops on a nil receiver.
type Metrics struct {
	rankRequests        *prometheus.CounterVec
	validationFailures  *prometheus.CounterVec
	recordsRanked       prometheus.Histogram
	rankDuration        *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         prometheus.Counter
}

// New creates the collectors. They are not registered; call Register.
func New() *Metrics {
	return &Metrics{
		rankRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rank_requests_total",
				Help:      "Ranking requests by transport and outcome",
			},
			[]string{"transport", "outcome"},
		),
		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Rejected ranking requests by transport and failure code",
			},
			[]string{"transport", "code"},
		),
		recordsRanked: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "records_per_request",
				Help:      "Number of records in successfully ranked requests",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		rankDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rank_duration_seconds",
				Help:      "Time spent validating and ranking a request",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"transport"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1.0},
			},
			[]string{"method", "route"},
		),
		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "HTTP requests rejected by the rate limiter",
			},
		),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	var errs []error
	for _, c := range []prometheus.Collector{
		m.rankRequests,
		m.validationFailures,
		m.recordsRanked,
		m.rankDuration,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.rateLimited,
	} {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ObserveRanked records a successful ranking.
func (m *Metrics) ObserveRanked(transport string, records int, d time.Duration) {
	if m == nil {
		return
	}
	m.rankRequests.WithLabelValues(transport, OutcomeRanked).Inc()
	m.recordsRanked.Observe(float64(records))
	m.rankDuration.WithLabelValues(transport).Observe(d.Seconds())
}

// ObserveRejected records a request that failed validation.
func (m *Metrics) ObserveRejected(transport, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rankRequests.WithLabelValues(transport, OutcomeRejected).Inc()
	m.validationFailures.WithLabelValues(transport, code).Inc()
	m.rankDuration.WithLabelValues(transport).Observe(d.Seconds())
}

// ObserveHTTPRequest records one served HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// ObserveRateLimited records a request blocked by the rate limiter.
func (m *Metrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
