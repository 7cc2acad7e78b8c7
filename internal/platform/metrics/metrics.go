package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	CheckoutEvaluations *prometheus.CounterVec
	BlacklistMatches    *prometheus.CounterVec
	WhitelistBypasses   prometheus.Counter

	FraudAttemptsRecorded prometheus.Counter
	Escalations           *prometheus.CounterVec
	OrdersCancelled       prometheus.Counter

	RulesetCacheHits   prometheus.Counter
	RulesetCacheMisses prometheus.Counter
	RulesetWrites      *prometheus.CounterVec

	EndpointLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CheckoutEvaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fraudgate_checkout_evaluations_total",
			Help: "Total checkout evaluations, labeled by outcome (allow/reject)",
		}, []string{"outcome"}),
		BlacklistMatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fraudgate_blacklist_matches_total",
			Help: "Total blacklist matches, labeled by matched signal",
		}, []string{"reason"}),
		WhitelistBypasses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgate_whitelist_bypasses_total",
			Help: "Total evaluations short-circuited by the whitelist",
		}),
		FraudAttemptsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgate_fraud_attempts_recorded_total",
			Help: "Total failed-order fraud attempt records written",
		}),
		Escalations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fraudgate_escalations_total",
			Help: "Total automatic blacklist escalations, labeled by threshold (order/cross_order)",
		}, []string{"threshold"}),
		OrdersCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgate_orders_cancelled_total",
			Help: "Total orders cancelled after a blacklist escalation",
		}),
		RulesetCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgate_ruleset_cache_hits_total",
			Help: "Total ruleset reads served from cache",
		}),
		RulesetCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgate_ruleset_cache_misses_total",
			Help: "Total ruleset reads that fell through to the store",
		}),
		RulesetWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fraudgate_ruleset_writes_total",
			Help: "Total ruleset list mutations, labeled by field and action",
		}, []string{"field", "action"}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fraudgate_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}
