package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// Services receive a possibly-nil *Metrics and must use the Increment
// helpers, which tolerate nil so unit tests can skip registration.
type Metrics struct {
	UsersRegistered   prometheus.Counter
	GeneratorsCreated prometheus.Counter
	DrawsCompleted    prometheus.Counter
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rngenius_users_registered_total",
			Help: "Total number of users registered in the system",
		}),
		GeneratorsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rngenius_generators_created_total",
			Help: "Total number of generators created",
		}),
		DrawsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rngenius_draws_completed_total",
			Help: "Total number of completed weighted draws",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rngenius_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// IncrementUsersRegistered increments the users registered counter by 1.
func (m *Metrics) IncrementUsersRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

// IncrementGeneratorsCreated increments the generators created counter by 1.
func (m *Metrics) IncrementGeneratorsCreated() {
	if m != nil {
		m.GeneratorsCreated.Inc()
	}
}

// IncrementDrawsCompleted increments the completed draws counter by 1.
func (m *Metrics) IncrementDrawsCompleted() {
	if m != nil {
		m.DrawsCompleted.Inc()
	}
}

// ObserveRequest records one HTTP request observation.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(elapsed.Seconds())
	}
}
