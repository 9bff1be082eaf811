package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesProcessed tracks listing pages completed per provider.
	PagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_pages_processed_total",
			Help: "Total number of listing pages processed",
		},
		[]string{"provider"},
	)

	// MessagesProcessed tracks categorized messages per provider and label.
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_messages_processed_total",
			Help: "Total number of messages categorized",
		},
		[]string{"provider", "label"},
	)

	// ProviderCalls tracks backing-store calls per operation.
	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_provider_calls_total",
			Help: "Total number of backing-store calls",
		},
		[]string{"provider", "op"},
	)

	// ProviderErrors tracks backing-store failures by classification.
	ProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_provider_errors_total",
			Help: "Total number of backing-store errors",
		},
		[]string{"provider", "op", "kind"},
	)

	// MutateRetries tracks backoff retries during the mutate stage.
	MutateRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_mutate_retries_total",
			Help: "Total number of mutation retries after rate limiting",
		},
		[]string{"provider"},
	)

	// MutateLatency tracks mutation call latency.
	MutateLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triage_mutate_latency_seconds",
			Help:    "Mutation batch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// EscalationsApplied tracks age-based tier escalations.
	EscalationsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_escalations_applied_total",
			Help: "Total number of age-based escalations applied",
		},
		[]string{"provider"},
	)

	// LastCheckpoint records the unix time of the latest state save.
	LastCheckpoint = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "triage_last_checkpoint_timestamp",
			Help: "Unix timestamp of the most recent state checkpoint",
		},
		[]string{"provider"},
	)
)
