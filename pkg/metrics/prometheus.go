package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	loansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loans_total",
			Help: "Loan lifecycle events by outcome",
		},
		[]string{"outcome"},
	)

	loanAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loan_requested_amount",
			Help:    "Requested loan principal",
			Buckets: []float64{500, 1000, 2500, 5000, 10000, 20000, 30000, 50000},
		},
	)

	xpChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xp_changes_total",
			Help: "XP mutations by reason and direction",
		},
		[]string{"reason", "direction"},
	)

	levelUpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Level promotions by new level",
		},
		[]string{"level"},
	)

	reactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_reactions_total",
			Help: "Reaction toggles by type and result",
		},
		[]string{"type", "result"},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification persistence and delivery results",
		},
		[]string{"stage", "status"},
	)

	settingsCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settings_cache_total",
			Help: "Settings snapshot cache lookups",
		},
		[]string{"result"},
	)
)

// HTTP Metrics
func RecordHTTPRequest(method, endpoint, statusCode string, duration float64) {
	httpRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// Lending Metrics
func RecordLoan(outcome string) {
	loansTotal.WithLabelValues(outcome).Inc()
}

func ObserveLoanAmount(amount float64) {
	loanAmount.Observe(amount)
}

// XP Metrics
func RecordXPChange(reason string, delta int64) {
	direction := "gain"
	if delta < 0 {
		direction = "loss"
	}
	xpChangesTotal.WithLabelValues(reason, direction).Inc()
}

func RecordLevelUp(level string) {
	levelUpsTotal.WithLabelValues(level).Inc()
}

func RecordReaction(reactionType, result string) {
	reactionsTotal.WithLabelValues(reactionType, result).Inc()
}

// Notification Metrics
func RecordNotification(stage, status string) {
	notificationsTotal.WithLabelValues(stage, status).Inc()
}

func RecordSettingsCache(result string) {
	settingsCacheTotal.WithLabelValues(result).Inc()
}
