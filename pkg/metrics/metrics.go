package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	DiscoveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridge_discovery_duration_seconds",
		Help:    "Time taken to discover balances per provider",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"provider"})

	DiscoveryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_discovery_errors_total",
		Help: "The total number of per-chain balance discovery failures",
	}, []string{"chain"})

	DiscoveredIntents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bridge_discovered_intents",
		Help: "The number of discovered intents currently cached across providers",
	})

	DegradedDiscoveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_degraded_discoveries_total",
		Help: "The total number of discovery calls served from a fallback layer",
	}, []string{"layer"})

	PriceFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_price_fallbacks_total",
		Help: "The total number of price lookups served from static fallback prices",
	}, []string{"chain", "token"})

	QuotesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_quotes_issued_total",
		Help: "The total number of quotes issued by source chain",
	}, []string{"chain"})

	AllowanceRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridge_allowance_rejections_total",
		Help: "The total number of quotes or submissions rejected by the sponsorship allowance",
	})

	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_submissions_total",
		Help: "The total number of intent submissions by resulting status",
	}, []string{"status"})

	ExecutorErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridge_executor_errors_total",
		Help: "The total number of transfer executor failures",
	})

	SubmissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bridge_submission_duration_seconds",
		Help:    "Time taken to drive a submission through the executor",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
)
