package restconsumer

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors updated by a [Transport].
type Metrics struct {
	// Requests counts attempts per method and status code ("error" when no
	// response was received).
	Requests *prometheus.CounterVec

	// Retries counts attempts that were followed by another one.
	Retries *prometheus.CounterVec

	// Failures counts calls that ended in an error, per failure kind.
	Failures *prometheus.CounterVec

	// Latency observes attempt duration in seconds.
	Latency *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restconsumer_requests_total",
				Help: "Total number of HTTP attempts",
			},
			[]string{"method", "code"},
		),
		Retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restconsumer_retries_total",
				Help: "Total number of retried attempts",
			},
			[]string{"method"},
		),
		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restconsumer_failures_total",
				Help: "Total number of calls that returned an error",
			},
			[]string{"method", "kind"},
		),
		Latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "restconsumer_request_duration_seconds",
				Help:    "HTTP attempt latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

func (m *Metrics) observeAttempt(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.Requests.WithLabelValues(method, code).Inc()
	m.Latency.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) observeRetry(method string) {
	if m == nil {
		return
	}
	m.Retries.WithLabelValues(method).Inc()
}

func (m *Metrics) observeFailure(method string, err error) {
	if m == nil {
		return
	}
	kind := string(KindOf(err))
	if kind == "" {
		kind = "unclassified"
	}
	m.Failures.WithLabelValues(method, kind).Inc()
}
