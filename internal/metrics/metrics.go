// Package metrics provides Prometheus metrics for the compaction planner
// and its rewrite task executor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlanningTicks tracks the total number of planning passes run.
	PlanningTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raftlog_compaction_planning_ticks_total",
		Help: "Total number of minor compaction planning passes run",
	})

	// PlanningDuration tracks how long a single planning pass took.
	PlanningDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "raftlog_compaction_planning_duration_seconds",
		Help:    "Duration of a single BuildTasks planning pass",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
	})

	// SegmentsConsidered tracks segments seen by the policy, labeled by
	// the decision the policy made for them.
	SegmentsConsidered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "raftlog_compaction_segments_considered_total",
		Help: "Segments evaluated by the compaction policy",
	}, []string{"decision"}) // ineligible, kept, cleanable

	// GroupsFormed tracks groups emitted by the planner, labeled by
	// whether they were singletons or merges of multiple segments.
	GroupsFormed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "raftlog_compaction_groups_formed_total",
		Help: "Merge groups formed by the compaction planner",
	}, []string{"kind"}) // singleton, merged

	// TaskOutcomes tracks rewrite task results by outcome.
	TaskOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "raftlog_compaction_task_outcomes_total",
		Help: "Rewrite task outcomes from the compaction executor",
	}, []string{"outcome"}) // success, io_error, insufficient_space, corrupt

	// BytesReclaimed tracks bytes reclaimed by the most recent
	// completed rewrite task.
	BytesReclaimed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "raftlog_compaction_bytes_reclaimed",
		Help: "Bytes reclaimed by the most recently completed rewrite task",
	})

	// CircuitBreakerState tracks the executor's circuit breaker state
	// (0=closed, 1=open, 2=half-open).
	CircuitBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "raftlog_compaction_circuit_breaker_state",
		Help: "Current state of the rewrite executor's circuit breaker",
	})
)
