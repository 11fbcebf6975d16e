package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	Appends        *prometheus.CounterVec
	AppendDuration *prometheus.HistogramVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// Outbox relay metrics
	OutboxPublished prometheus.Counter
	OutboxErrors    *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Appends: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_purchase_appends_total",
				Help: "Purchase appends by outcome",
			},
			[]string{"outcome"},
		),
		AppendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardledger_purchase_append_duration_seconds",
				Help:    "Duration of purchase appends, lock wait and retries included",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"outcome"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		}),

		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_outbox_published_total",
			Help: "Outbox events delivered by the relay",
		}),
		OutboxErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_outbox_errors_total",
				Help: "Outbox relay failures by stage",
			},
			[]string{"stage"},
		),
	}
}

// ObserveAppend implements usecase.LedgerMetrics.
func (m *Metrics) ObserveAppend(outcome string, duration time.Duration) {
	m.Appends.WithLabelValues(outcome).Inc()
	m.AppendDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}
