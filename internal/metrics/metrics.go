package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckinsTotal counts scored check-ins by resulting risk level.
	CheckinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sepsiscan",
		Name:      "checkins_total",
		Help:      "Number of scored check-ins by risk level",
	}, []string{"risk_level"})

	// CheckinDuration observes end-to-end check-in processing time.
	CheckinDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sepsiscan",
		Name:      "checkin_duration_seconds",
		Help:      "Check-in scoring and persistence latency",
		Buckets:   prometheus.DefBuckets,
	})

	// RecoveryCheckinsTotal counts processed recovery-mode check-ins.
	RecoveryCheckinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sepsiscan",
		Name:      "recovery_checkins_total",
		Help:      "Number of processed recovery check-ins",
	})

	// AlertsTotal counts dispatched alerts by channel and outcome.
	AlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sepsiscan",
		Name:      "alerts_total",
		Help:      "Number of alert dispatch attempts by channel and status",
	}, []string{"channel", "status"})

	// EmergencyBypassTotal counts unattended emergency escalations.
	EmergencyBypassTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sepsiscan",
		Name:      "emergency_bypass_total",
		Help:      "Number of emergency bypass activations",
	})

	// OfflineQueueDepth tracks pending offline check-ins.
	OfflineQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sepsiscan",
		Name:      "offline_queue_depth",
		Help:      "Pending check-ins in the offline queue",
	})

	// SweepRunsTotal counts scheduled sweep executions by job name.
	SweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sepsiscan",
		Name:      "sweep_runs_total",
		Help:      "Number of background sweep runs by job",
	}, []string{"job"})

	// EntriesPrunedTotal counts history entries removed by the privacy sweep.
	EntriesPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sepsiscan",
		Name:      "entries_pruned_total",
		Help:      "History entries deleted by privacy auto-delete",
	})
)
