package health

import (
	"ferreteria_server/services"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Requests are labelled by chi route pattern, so product ids never become labels
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ferreteria",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ferreteria",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	EventStreams = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ferreteria",
		Subsystem: "http",
		Name:      "event_streams_open",
		Help:      "Server-sent event streams currently connected",
	})
)

var registerOnce sync.Once

// registerCollectors adds the HTTP and domain collectors to the default registry once
func registerCollectors() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestsTotal, EventStreams)
		prometheus.MustRegister(services.Collectors()...)
	})
}
