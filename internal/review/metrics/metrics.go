package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the review module.
// Tracks review decisions and listing latency against the shared database.
type Metrics struct {
	PresentationsReviewed *prometheus.CounterVec
	ListDuration          prometheus.Histogram
}

// New creates a new Metrics instance with all review module metrics registered.
func New() *Metrics {
	return &Metrics{
		PresentationsReviewed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "presadmin_presentations_reviewed_total",
			Help: "Total number of presentations reviewed, by decision",
		}, []string{"decision"}),
		ListDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "presadmin_list_duration_seconds",
			Help:    "Duration of listing queries against the shared bot database",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementReviewed records a review decision ("approved" or "rejected").
func (m *Metrics) IncrementReviewed(decision string) {
	m.PresentationsReviewed.WithLabelValues(decision).Inc()
}

// ObserveList records the duration of one listing query.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveList(start time.Time) {
	m.ListDuration.Observe(time.Since(start).Seconds())
}
