// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	WatchPartyRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watch_party_rooms",
			Help: "Current number of open watch party rooms",
		},
	)

	WatchPartyClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watch_party_clients",
			Help: "Current number of connected watch party clients",
		},
	)

	BannedContentRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "banned_content_rejections_total",
			Help: "Total number of writes rejected by the banned word filter",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by key family and result",
		},
		[]string{"family", "result"}, // result: hit|miss|error
	)
)

// RecordAPIRequest records one finished request. route is the chi route
// pattern so ids do not explode label cardinality.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordCacheLookup(family string, hit bool, err error) {
	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case hit:
		result = "hit"
	}
	CacheLookups.WithLabelValues(family, result).Inc()
}
