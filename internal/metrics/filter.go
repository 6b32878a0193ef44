package metrics

import "github.com/prometheus/client_golang/prometheus"

// Occurrence filtering Prometheus metrics.
var (
	PointsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "occfilter",
			Name:      "points_total",
			Help:      "Total occurrence points loaded from all sources",
		},
	)

	PointsRemovedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "occfilter",
			Name:      "points_removed_total",
			Help:      "Occurrence points removed per filter stage",
		},
		[]string{"stage"},
	)

	SpeciesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "occfilter",
			Name:      "species_total",
			Help:      "Processed species by outcome",
		},
		[]string{"status"}, // "retained" / "dropped" / "failed"
	)

	SpeciesDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "occfilter",
			Name:      "species_dropped_total",
			Help:      "Dropped species by the stage that dropped them",
		},
		[]string{"stage"},
	)

	RecordsMalformedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "occfilter",
			Name:      "records_malformed_total",
			Help:      "Occurrence records skipped because they could not be parsed",
		},
		[]string{"source"},
	)

	RangeMapFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "occfilter",
			Name:      "rangemap_failures_total",
			Help:      "Range-map lookups that fell back to no locality filter",
		},
		[]string{"reason"},
	)

	RangeMapCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "occfilter",
			Name:      "rangemap_cache_total",
			Help:      "Range-map geometry cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	IndexBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "occfilter",
			Name:      "index_build_duration_seconds",
			Help:      "Spatial index build duration per species",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	IndexCellsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "occfilter",
			Name:      "index_cells_total",
			Help:      "Decomposed index cells by coverage",
		},
		[]string{"coverage"}, // "full" / "partial"
	)

	SpeciesDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "occfilter",
			Name:      "species_duration_seconds",
			Help:      "Per-species pipeline duration",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

var filterMetricsRegistered bool

// RegisterFilterMetrics registers occurrence filtering metrics. Must be called once from main.
func RegisterFilterMetrics() {
	if filterMetricsRegistered {
		return
	}
	prometheus.MustRegister(PointsTotal)
	prometheus.MustRegister(PointsRemovedTotal)
	prometheus.MustRegister(SpeciesTotal)
	prometheus.MustRegister(SpeciesDroppedTotal)
	prometheus.MustRegister(RecordsMalformedTotal)
	prometheus.MustRegister(RangeMapFailuresTotal)
	prometheus.MustRegister(RangeMapCacheTotal)
	prometheus.MustRegister(IndexBuildDuration)
	prometheus.MustRegister(IndexCellsTotal)
	prometheus.MustRegister(SpeciesDuration)
	filterMetricsRegistered = true
}
