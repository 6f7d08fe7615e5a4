package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Surface labels
const (
	SurfaceAPI = "api"
	SurfaceBot = "bot"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nexotime_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "route", "status"},
	)

	BotUpdatesCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexotime_bot_updates_total",
			Help: "Telegram updates handled, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	CompletionsLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexotime_completions_logged_total",
			Help: "Completion upserts, by surface and completed flag",
		},
		[]string{"surface", "completed"},
	)

	LinkCodesRedeemed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexotime_link_codes_redeemed_total",
			Help: "Link code redemption attempts, by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordHTTPRequestDuration(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

func IncrementBotUpdate(kind, outcome string) {
	BotUpdatesCount.WithLabelValues(kind, outcome).Inc()
}

func IncrementCompletionLogged(surface string, completed bool) {
	label := "false"
	if completed {
		label = "true"
	}
	CompletionsLogged.WithLabelValues(surface, label).Inc()
}

func IncrementLinkCodeRedeemed(outcome string) {
	LinkCodesRedeemed.WithLabelValues(outcome).Inc()
}
