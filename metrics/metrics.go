// Package metrics exposes prometheus instruments for the QA pipeline.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	stageLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "climatechat_stage_latency_ms",
		Help:    "Latency of pipeline stages in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	}, []string{"stage"})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "climatechat_cache_lookups_total",
		Help: "Response cache lookups by outcome (hit/miss)",
	}, []string{"outcome"})

	gateVerdicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "climatechat_gate_verdict_total",
		Help: "Topic/safety gate verdicts by verdict and deciding tier",
	}, []string{"verdict", "tier"})

	rejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "climatechat_rejections_total",
		Help: "Queries rejected before generation, by reason",
	}, []string{"reason"})

	fallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "climatechat_web_fallback_total",
		Help: "Web-search fallback attempts by outcome (improved/kept_primary/failed)",
	}, []string{"outcome"})

	faithfulness = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "climatechat_faithfulness_score",
		Help:    "Faithfulness score distribution of served answers",
		Buckets: []float64{0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
	})

	retrievedDocs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "climatechat_retrieved_documents",
		Help:    "Documents surviving retrieval normalization per query",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 10, 15},
	})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(stageLatency, cacheLookups, gateVerdicts, rejections,
			fallbacks, faithfulness, retrievedDocs)
	})
}

// ObserveStage records one pipeline stage duration.
func ObserveStage(stage string, d time.Duration) {
	ensureRegistered()
	stageLatency.WithLabelValues(stage).Observe(float64(d.Milliseconds()))
}

// IncCacheLookup records a cache hit or miss.
func IncCacheLookup(hit bool) {
	ensureRegistered()
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
	} else {
		cacheLookups.WithLabelValues("miss").Inc()
	}
}

// IncGateVerdict records a gate decision.
func IncGateVerdict(verdict, tier string) {
	ensureRegistered()
	gateVerdicts.WithLabelValues(verdict, tier).Inc()
}

// IncRejection records a pre-generation rejection.
func IncRejection(reason string) {
	ensureRegistered()
	rejections.WithLabelValues(reason).Inc()
}

// IncFallback records a web-search fallback outcome.
func IncFallback(outcome string) {
	ensureRegistered()
	fallbacks.WithLabelValues(outcome).Inc()
}

// ObserveFaithfulness records the score of a served answer.
func ObserveFaithfulness(score float64) {
	ensureRegistered()
	if score >= 0 {
		faithfulness.Observe(score)
	}
}

// ObserveRetrievedDocs records how many documents survived retrieval.
func ObserveRetrievedDocs(n int) {
	ensureRegistered()
	retrievedDocs.Observe(float64(n))
}

// Collectors exposes all collectors for registration with a custom registry.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		stageLatency, cacheLookups, gateVerdicts, rejections,
		fallbacks, faithfulness, retrievedDocs,
	}
}
