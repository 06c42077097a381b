package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics holds the collectors the pipeline reports into.
type PipelineMetrics struct {
	stageDuration      *prometheus.HistogramVec
	stageRuns          *prometheus.CounterVec
	transactionsFolded prometheus.Counter
	unmatchedAccounts  prometheus.Counter
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of a pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}, []string{"stage"}),
		stageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "stage_runs_total",
			Help:      "Pipeline stage executions by outcome.",
		}, []string{"stage", "outcome"}),
		transactionsFolded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "transactions_folded_total",
			Help:      "Ledger rows folded into account balances.",
		}),
		unmatchedAccounts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "unmatched_accounts_total",
			Help:      "Account deltas whose IBAN had no graph vertex.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.stageDuration, m.stageRuns, m.transactionsFolded, m.unmatchedAccounts)
	}
	return m
}

func (m *PipelineMetrics) ObserveStage(stage string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	m.stageRuns.WithLabelValues(stage, outcome).Inc()
}

func (m *PipelineMetrics) AddFolded(rows int64, unmatched int) {
	if m == nil {
		return
	}
	if rows > 0 {
		m.transactionsFolded.Add(float64(rows))
	}
	if unmatched > 0 {
		m.unmatchedAccounts.Add(float64(unmatched))
	}
}
