package check

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts check runs and their outcomes. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	runs         prometheus.Counter
	failedRuns   prometheus.Counter
	fatalRuns    prometheus.Counter
	reports      *prometheus.CounterVec
	hardFailures *prometheus.CounterVec
}

// NewMetrics registers the check metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounter(prometheus.CounterOpts{
			Namespace: "instal",
			Name:      "check_runs_total",
			Help:      "Completed check runs, excluding runs aborted by a fatal error.",
		}),
		failedRuns: f.NewCounter(prometheus.CounterOpts{
			Namespace: "instal",
			Name:      "check_failed_runs_total",
			Help:      "Check runs that produced an error or hard failure.",
		}),
		fatalRuns: f.NewCounter(prometheus.CounterOpts{
			Namespace: "instal",
			Name:      "fatal_total",
			Help:      "Check runs aborted by a fatal structural error.",
		}),
		reports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "instal",
			Name:      "reports_total",
			Help:      "Reports emitted, by checker and severity.",
		}, []string{"checker", "severity"}),
		hardFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "instal",
			Name:      "hard_failures_total",
			Help:      "Checkers that crashed during finalize.",
		}, []string{"checker"}),
	}
}

func (m *Metrics) observe(results Results) {
	if m == nil {
		return
	}
	m.runs.Inc()
	if results.Count(SeverityError)+results.Count(SeverityHardFailure) > 0 {
		m.failedRuns.Inc()
	}
	for sev, reports := range results {
		for _, rep := range reports {
			m.reports.WithLabelValues(rep.Checker, sev.String()).Inc()
			if sev == SeverityHardFailure {
				m.hardFailures.WithLabelValues(rep.Checker).Inc()
			}
		}
	}
}

func (m *Metrics) observeFatal() {
	if m == nil {
		return
	}
	m.fatalRuns.Inc()
}
