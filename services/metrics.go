package services

import "github.com/prometheus/client_golang/prometheus"

var (
	CatalogBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ferreteria",
			Subsystem: "catalog",
			Name:      "build_duration_seconds",
			Help:      "Time spent downloading and indexing the session catalog",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"result"},
	)

	CatalogSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ferreteria",
			Subsystem: "catalog",
			Name:      "products",
			Help:      "Products in the most recently built catalog",
		},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ferreteria",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Searches served, by source",
		},
		[]string{"source"},
	)

	EditSavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ferreteria",
			Subsystem: "edit",
			Name:      "saves_total",
			Help:      "Edit submissions, by outcome",
		},
		[]string{"result"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ferreteria",
			Subsystem: "session",
			Name:      "active",
			Help:      "Clerk sessions currently held in memory",
		},
	)
)

// Collectors lists the domain metrics for registration
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		CatalogBuildDuration,
		CatalogSize,
		SearchesTotal,
		EditSavesTotal,
		ActiveSessions,
	}
}
