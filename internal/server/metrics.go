package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests  *prometheus.CounterVec
	fetch     prometheus.Histogram
	cacheHits prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "postgang_feed_requests_total",
			Help: "Feed requests by HTTP status code",
		}, []string{"status"}),
		fetch: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "postgang_source_fetch_seconds",
			Help:    "Latency of delivery date lookups and rendering",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "postgang_feed_cache_hits_total",
			Help: "Feed requests answered from the cache",
		}),
	}
}
