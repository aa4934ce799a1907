// Package metrics holds the Prometheus instrumentation for the scoring
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline run outcomes recorded on the runs counter.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultCacheHit = "cache_hit"
)

// Collector bundles the pipeline's Prometheus collectors. A Collector is
// bound to the registry passed at construction, so tests can use a private
// registry.
type Collector struct {
	PipelineRuns     *prometheus.CounterVec
	PipelineDuration prometheus.Histogram
	PriceSourceHits  *prometheus.CounterVec
	PriceCacheHits   prometheus.Counter
	UnpricedTokens   prometheus.Counter
}

// NewCollector creates and registers the pipeline collectors on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "defai_pipeline_runs_total",
			Help: "Portfolio pipeline runs by result.",
		}, []string{"result"}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "defai_pipeline_duration_seconds",
			Help:    "Wall time of full portfolio pipeline runs.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		PriceSourceHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "defai_price_source_hits_total",
			Help: "Successful price resolutions by source.",
		}, []string{"source"}),
		PriceCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "defai_price_cache_hits_total",
			Help: "Price lookups answered from the price cache.",
		}),
		UnpricedTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "defai_unpriced_tokens_total",
			Help: "Price resolutions that exhausted every source.",
		}),
	}

	reg.MustRegister(
		c.PipelineRuns,
		c.PipelineDuration,
		c.PriceSourceHits,
		c.PriceCacheHits,
		c.UnpricedTokens,
	)
	return c
}
