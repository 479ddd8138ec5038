package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreLatency is the duration of store queries.
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dataaccess_store_latency",
			Help: "Duration of store queries",
		},
		[]string{"dal", "query", "backend"},
	)

	// StoreTotalRequests is the total number of store requests.
	StoreTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataaccess_store_total_requests",
			Help: "Total number of store requests",
		},
		[]string{"dal", "query", "backend"},
	)
)

// Observe counts a store request and returns a func that records its latency.
//
//	defer monitoring.Observe("ticket_dal", "get_ticket", "mongo")()
func Observe(dal, query, backend string) func() {
	StoreTotalRequests.WithLabelValues(dal, query, backend).Inc()
	t := prometheus.NewTimer(StoreLatency.WithLabelValues(dal, query, backend))
	return func() {
		t.ObserveDuration()
	}
}
