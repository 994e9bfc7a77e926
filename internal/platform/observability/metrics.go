package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DiscoveryRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sred_discovery_runs_total",
		Help: "The total number of discovery runs by strategy and terminal status",
	}, []string{"strategy", "status"})

	DiscoveryRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sred_discovery_run_duration_seconds",
		Help:    "Duration of discovery runs",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"strategy"})

	DiscoveryCandidates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sred_discovery_candidates_total",
		Help: "Project candidates emitted by confidence tier",
	}, []string{"tier"})

	DiscoveryOrphans = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sred_discovery_orphans_total",
		Help: "Documents left unassigned by a discovery run",
	})

	DiscoveryFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sred_discovery_fallbacks_total",
		Help: "Graceful degradations taken during discovery by reason",
	}, []string{"reason"})

	SignalsBackfilled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sred_signals_backfilled_total",
		Help: "Documents whose signal profile and entities were recomputed",
	})

	DocumentsExcluded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sred_documents_excluded_total",
		Help: "Documents excluded from clustering by reason",
	}, []string{"reason"})

	EmbeddingFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sred_embedding_fetches_total",
		Help: "Embedding lookups for documents without a cached vector",
	}, []string{"status"})

	ClustersFound = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sred_clusters_found",
		Help:    "Clusters found per clustering pass",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})

	ChangeDocuments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sred_change_documents_total",
		Help: "New documents processed by change detection by outcome",
	}, []string{"outcome"})

	NarrativeImpacts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sred_narrative_impacts_total",
		Help: "Narrative impacts flagged by type and severity",
	}, []string{"type", "severity"})

	AssociationsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sred_associations_applied_total",
		Help: "Document-to-project associations applied by result",
	}, []string{"result"})

	WatchTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sred_watch_ticks_total",
		Help: "Watch loop iterations by status",
	}, []string{"status"})
)
