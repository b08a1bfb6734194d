// Package metrics holds the Prometheus collectors for analysis runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gyeh/billcheck/internal/model"
)

// Metrics groups the run collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Runs        *prometheus.CounterVec
	Detections  *prometheus.CounterVec
	RuleFaults  *prometheus.CounterVec
	SavingsCent prometheus.Counter
	Duration    prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billcheck",
			Name:      "runs_total",
			Help:      "Analysis runs by outcome.",
		}, []string{"outcome"}),
		Detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billcheck",
			Name:      "detections_total",
			Help:      "Findings emitted, by rule and severity.",
		}, []string{"rule", "severity"}),
		RuleFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billcheck",
			Name:      "rule_faults_total",
			Help:      "Rules that panicked and were isolated.",
		}, []string{"rule"}),
		SavingsCent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "billcheck",
			Name:      "savings_cents_total",
			Help:      "Allocated savings across all runs, in cents.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "billcheck",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one analysis run.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
	reg.MustRegister(m.Runs, m.Detections, m.RuleFaults, m.SavingsCent, m.Duration)
	return m
}

// Outcomes for Runs.
const (
	OutcomeOK       = "ok"
	OutcomePartial  = "partial"
	OutcomeRejected = "rejected"
)

// ObserveRun records one completed run.
func (m *Metrics) ObserveRun(res *model.AnalyzerResult, faulted []string, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if len(faulted) > 0 {
		outcome = OutcomePartial
	}
	m.Runs.WithLabelValues(outcome).Inc()
	for _, d := range res.Detections {
		m.Detections.WithLabelValues(d.RuleKey, string(d.Severity)).Inc()
	}
	for _, key := range faulted {
		m.RuleFaults.WithLabelValues(key).Inc()
	}
	m.SavingsCent.Add(float64(res.Savings.TotalCents))
	m.Duration.Observe(elapsed.Seconds())
}

// ObserveRejected records a run refused by input validation.
func (m *Metrics) ObserveRejected() {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(OutcomeRejected).Inc()
}

// WriteTextfile writes every collector in g to path in the text exposition
// format, for the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
