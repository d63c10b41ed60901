// Package metrics exposes Prometheus counters for the survey service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes.
const (
	OutcomeSaved            = "saved"
	OutcomeValidationFailed = "validation_failed"
	OutcomePersistFailed    = "persist_failed"
)

// Metrics groups the collectors registered by the service.
type Metrics struct {
	Submissions  *prometheus.CounterVec
	ResultsViews *prometheus.CounterVec
	RepairedRows prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steps_survey",
			Name:      "submissions_total",
			Help:      "Survey submissions by outcome and, for rejections, error kind.",
		}, []string{"outcome", "kind"}),
		ResultsViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steps_survey",
			Name:      "results_views_total",
			Help:      "Results renders by status.",
		}, []string{"status"}),
		RepairedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "steps_survey",
			Name:      "repaired_rows_total",
			Help:      "Stored rows coerced or dropped while loading the entry table.",
		}),
	}
	reg.MustRegister(m.Submissions, m.ResultsViews, m.RepairedRows)
	return m
}

// ObserveSubmission counts one submission. kind is empty unless rejected.
func (m *Metrics) ObserveSubmission(outcome, kind string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome, kind).Inc()
}

// ObserveResults counts one results render and any repaired rows it loaded.
func (m *Metrics) ObserveResults(status string, repaired int) {
	if m == nil {
		return
	}
	m.ResultsViews.WithLabelValues(status).Inc()
	if repaired > 0 {
		m.RepairedRows.Add(float64(repaired))
	}
}
