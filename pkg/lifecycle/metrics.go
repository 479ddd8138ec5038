package lifecycle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transitions is the number of lifecycle requests and effects by result.
	Transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_lifecycle_transitions_total",
			Help: "Total number of ticket lifecycle requests and effects by result",
		},
		[]string{"transition", "result"},
	)

	// RecordRemovals is the number of ticket records removed by source.
	RecordRemovals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_lifecycle_record_removals_total",
			Help: "Total number of ticket records removed",
		},
		[]string{"source"},
	)

	// Inconsistencies is the number of times the store disagreed with the platform.
	Inconsistencies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_lifecycle_inconsistencies_total",
			Help: "Total number of ticket records found without a channel",
		},
		[]string{"source"},
	)
)

func observe(transition string, err error) {
	Transitions.WithLabelValues(transition, string(KindOf(err))).Inc()
}
