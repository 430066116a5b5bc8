package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blog", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blog", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	SlugProbeAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: "blog", Name: "slug_probe_attempts", Help: "Point queries needed to find a free slug.", Buckets: []float64{1, 2, 3, 5, 10, 25, 50}},
	)
	SlugInsertConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "blog", Name: "slug_insert_conflicts_total", Help: "Post inserts rejected by the unique slug index."},
	)
	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blog", Name: "webhook_events_total", Help: "Identity webhook events by type and outcome."},
		[]string{"type", "outcome"},
	)
	CascadeDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blog", Name: "cascade_deleted_total", Help: "Records removed by user-deletion cascades."},
		[]string{"kind"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(SlugProbeAttempts)
	reg.MustRegister(SlugInsertConflicts)
	reg.MustRegister(WebhookEvents)
	reg.MustRegister(CascadeDeleted)
}
