package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PendingTasks is the number of tasks waiting for their delay to elapse.
	PendingTasks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_pending_tasks",
			Help: "Number of delayed tasks waiting to run",
		},
	)

	// TaskResults is the number of task attempts by outcome.
	TaskResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_task_results_total",
			Help: "Total number of delayed task attempts by result",
		},
		[]string{"task", "result"},
	)
)
