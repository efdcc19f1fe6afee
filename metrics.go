package wink

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes recorded by the metrics collector.
const (
	outcomeOK         = "ok"
	outcomeHTTPStatus = "http_status"
	outcomeParse      = "parse"
	outcomeTransport  = "transport"
	outcomeRejected   = "rejected"
)

// Metrics holds the prometheus collectors updated by Invoke.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the client's collectors without registering them.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wink_client_requests_total",
			Help: "Wink API requests by method and outcome",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wink_client_request_duration_seconds",
			Help:    "Wink API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.requests.Describe(ch)
	m.duration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.requests.Collect(ch)
	m.duration.Collect(ch)
}

func (m *Metrics) observe(method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// WithMetrics records request counts and latencies into reg.
// Registration errors other than AlreadyRegistered panic, as MustRegister does.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		m := NewMetrics()
		if reg != nil {
			if err := reg.Register(m); err != nil {
				var are prometheus.AlreadyRegisteredError
				if !errors.As(err, &are) {
					panic(err)
				}
				if existing, ok := are.ExistingCollector.(*Metrics); ok {
					m = existing
				}
			}
		}
		c.metrics = m
	}
}
