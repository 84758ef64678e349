package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the auth module.
// Tracks login outcomes and the OAuth callback critical path duration.
type Metrics struct {
	LoginSucceeded   prometheus.Counter
	LoginDenied      prometheus.Counter
	LoginFailed      prometheus.Counter
	CallbackDuration prometheus.Histogram
}

// New creates a new Metrics instance with all auth module metrics registered.
func New() *Metrics {
	return &Metrics{
		LoginSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "presadmin_logins_succeeded_total",
			Help: "Total number of staff logins that produced a session token",
		}),
		LoginDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "presadmin_logins_denied_total",
			Help: "Total number of logins denied because the user lacks the staff role",
		}),
		LoginFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "presadmin_logins_failed_total",
			Help: "Total number of logins aborted by an upstream or internal failure",
		}),
		CallbackDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "presadmin_oauth_callback_duration_seconds",
			Help:    "Duration of the OAuth callback flow (exchange, lookups, token mint)",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// ObserveCallback records the duration of one OAuth callback flow.
// Call with time.Now() captured at the start of the flow.
func (m *Metrics) ObserveCallback(start time.Time) {
	m.CallbackDuration.Observe(time.Since(start).Seconds())
}
