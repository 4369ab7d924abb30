package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "posada",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by handler.",
		},
		[]string{"handler"},
	)

	feedFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "posada",
			Name:      "feed_fetch_total",
			Help:      "Count of availability feed fetches by result.",
		},
		[]string{"result"},
	)

	snapshotsDiscarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "posada",
			Name:      "snapshots_discarded_total",
			Help:      "Count of stale availability snapshots discarded by the loader.",
		},
	)

	selectionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "posada",
			Name:      "selection_transitions_total",
			Help:      "Count of selection state transitions by resulting state.",
		},
		[]string{"state"},
	)

	bookingsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "posada",
			Name:      "bookings_submitted_total",
			Help:      "Count of booking submissions forwarded to the notifier by status.",
		},
		[]string{"status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, feedFetches, snapshotsDiscarded, selectionTransitions, bookingsSubmitted)
	})
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}

func IncFeedFetch(result string) {
	feedFetches.WithLabelValues(result).Inc()
}

func IncSnapshotDiscarded() {
	snapshotsDiscarded.Inc()
}

func IncSelectionTransition(state string) {
	selectionTransitions.WithLabelValues(state).Inc()
}

func IncBookingSubmitted(status string) {
	bookingsSubmitted.WithLabelValues(status).Inc()
}
