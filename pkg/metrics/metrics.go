package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TilesRequested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tiles_requested_total",
		Help: "Total number of tile fetches dispatched",
	})

	TileFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_fetch_failures_total",
		Help: "Total number of tile fetches that fell back to a placeholder",
	})

	TilesApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tiles_applied_total",
		Help: "Total number of fetch results turned into render entities",
	})

	TilesEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tiles_evicted_total",
		Help: "Total number of tiles removed by the eviction sweep",
	})

	ActiveTiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "active_tiles",
		Help: "Number of tiles with a live render entity",
	})

	ZoomChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zoom_changes_total",
		Help: "Total number of zoom level transitions",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total number of tile byte cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total number of tile byte cache misses",
	})

	CacheStores = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_stores_total",
		Help: "Total number of tile byte cache store operations",
	})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tile_fetch_duration_seconds",
		Help:    "Duration of upstream tile fetches in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	})
)
