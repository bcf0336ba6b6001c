// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the weigh-in tracker.
var (
	// Counters.
	CheckInsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkins_submitted_total",
			Help: "Total number of check-in submissions accepted",
		},
		[]string{"kind"}, // "new" or "resubmission"
	)

	CheckInsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkins_rejected_total",
			Help: "Total number of check-in submissions rejected",
		},
		[]string{"reason"},
	)

	SettlementRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_runs_total",
			Help: "Total settlement engine invocations",
		},
		[]string{"trigger", "status"}, // trigger: "scheduled" or "manual"
	)

	// Gauges.
	SettlementCohortSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "settlement_cohort_size",
			Help: "Size of the cohorts in the last settlement run",
		},
		[]string{"cohort"}, // "current", "prior", "eligible"
	)

	SchedulerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_last_run_timestamp",
			Help: "Unix timestamp of last scheduled settlement run",
		},
	)

	// Histograms.
	SettlementDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "settlement_duration_seconds",
			Help:    "Time taken to settle one week",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
	)

	SettlementWeightDiff = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "settlement_weight_diff_kg",
			Help:    "Week-over-week weight change of eligible users (positive = loss)",
			Buckets: prometheus.LinearBuckets(-5, 1, 11), // -5kg to +5kg
		},
	)
)

// RecordCheckInSubmitted records an accepted check-in submission.
func RecordCheckInSubmitted(kind string) {
	CheckInsSubmittedTotal.WithLabelValues(kind).Inc()
}

// RecordCheckInRejected records a rejected check-in submission.
func RecordCheckInRejected(reason string) {
	CheckInsRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordSettlementRun records a settlement engine invocation.
func RecordSettlementRun(trigger, status string) {
	SettlementRunsTotal.WithLabelValues(trigger, status).Inc()
}

// SetSettlementCohortSize sets the size of a cohort from the last run.
func SetSettlementCohortSize(cohort string, size int) {
	SettlementCohortSize.WithLabelValues(cohort).Set(float64(size))
}

// SetSchedulerLastRun sets the timestamp of the last scheduled run.
func SetSchedulerLastRun() {
	SchedulerLastRunTimestamp.SetToCurrentTime()
}

// ObserveSettlementDuration observes the duration of one settlement run.
func ObserveSettlementDuration(seconds float64) {
	SettlementDurationSeconds.Observe(seconds)
}

// ObserveWeightDiff observes one eligible user's week-over-week diff.
func ObserveWeightDiff(kg float64) {
	SettlementWeightDiff.Observe(kg)
}
