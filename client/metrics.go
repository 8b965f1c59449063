package client

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Token request outcomes.
const (
	tokenOutcomeCached     = "cached"
	tokenOutcomeIssued     = "issued"
	tokenOutcomeFailed     = "failed"
	tokenOutcomeIncomplete = "incomplete"
)

// metrics holds the collectors of one Adapter.
type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tokenRequests   *prometheus.CounterVec
}

func newMetrics() *metrics {
	return &metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hierarchy_client_requests_total",
				Help: "Total number of requests sent to the hierarchy service.",
			},
			[]string{"method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hierarchy_client_request_duration_seconds",
				Help:    "Hierarchy service request latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		tokenRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hierarchy_client_token_requests_total",
				Help: "Access token lookups by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

// register adds the collectors to reg. Collectors already registered by an
// earlier Adapter on the same registry are reused.
func (m *metrics) register(reg prometheus.Registerer) error {
	if reg == nil {
		return nil
	}
	if err := registerOrReuse(reg, m.requestsTotal, func(c prometheus.Collector) {
		m.requestsTotal = c.(*prometheus.CounterVec)
	}); err != nil {
		return err
	}
	if err := registerOrReuse(reg, m.requestDuration, func(c prometheus.Collector) {
		m.requestDuration = c.(*prometheus.HistogramVec)
	}); err != nil {
		return err
	}
	return registerOrReuse(reg, m.tokenRequests, func(c prometheus.Collector) {
		m.tokenRequests = c.(*prometheus.CounterVec)
	})
}

func registerOrReuse(reg prometheus.Registerer, c prometheus.Collector, reuse func(prometheus.Collector)) error {
	err := reg.Register(c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		reuse(are.ExistingCollector)
		return nil
	}
	return err
}

func (m *metrics) observeRequest(method string, status int, seconds float64) {
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(seconds)
}

func (m *metrics) observeToken(outcome string) {
	m.tokenRequests.WithLabelValues(outcome).Inc()
}
