package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Dispatch metrics
	eventsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vigilo",
			Subsystem: "dispatch",
			Name:      "events_total",
			Help:      "Total number of alert events dispatched",
		},
		[]string{"category", "severity"},
	)

	dispatchStageFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vigilo",
			Subsystem: "dispatch",
			Name:      "stage_failures_total",
			Help:      "Total number of dispatcher stage failures",
		},
		[]string{"stage"},
	)

	dispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "vigilo",
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Duration of a full event dispatch in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// Notification metrics
	notificationsPersistedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vigilo",
			Subsystem: "notify",
			Name:      "persisted_total",
			Help:      "Total number of notification records persisted",
		},
		[]string{"category"},
	)

	emailsQueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vigilo",
			Subsystem: "notify",
			Name:      "emails_queued_total",
			Help:      "Total number of alert emails queued",
		},
	)

	// Remediation metrics
	remediationActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vigilo",
			Subsystem: "remediation",
			Name:      "actions_total",
			Help:      "Total number of remediation actions executed",
		},
		[]string{"action", "outcome"},
	)

	// Pattern detection metrics
	patternHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vigilo",
			Subsystem: "patterns",
			Name:      "hits_total",
			Help:      "Total number of pattern checks that produced a secondary alert",
		},
		[]string{"pattern"},
	)
)

// RecordDispatch records a completed event dispatch
func RecordDispatch(category, severity string, seconds float64) {
	eventsDispatchedTotal.WithLabelValues(category, severity).Inc()
	dispatchDuration.Observe(seconds)
}

// RecordStageFailure records a dispatcher stage failure
func RecordStageFailure(stage string) {
	dispatchStageFailuresTotal.WithLabelValues(stage).Inc()
}

// RecordNotification records a persisted notification
func RecordNotification(category string) {
	notificationsPersistedTotal.WithLabelValues(category).Inc()
}

// RecordEmailQueued records a queued alert email
func RecordEmailQueued() {
	emailsQueuedTotal.Inc()
}

// RecordRemediation records a remediation action outcome
func RecordRemediation(action, outcome string) {
	remediationActionsTotal.WithLabelValues(action, outcome).Inc()
}

// RecordPatternHit records a fired pattern check
func RecordPatternHit(pattern string) {
	patternHitsTotal.WithLabelValues(pattern).Inc()
}

// Mount registers the metrics endpoint on a chi router
func Mount(r chi.Router) {
	r.Handle("/metrics", promhttp.Handler())
}

// Handler returns the metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
