package metrics

import "github.com/prometheus/client_golang/prometheus"

// SubmissionMetrics exposes counters/histograms for the lead pipeline.
type SubmissionMetrics struct {
	submissionsTotal *prometheus.CounterVec
	storeLatency     prometheus.Histogram
	emailsSentTotal  *prometheus.CounterVec
}

func NewSubmissionMetrics(reg prometheus.Registerer) *SubmissionMetrics {
	m := &SubmissionMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sprachraum",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Total lead submissions by outcome",
		}, []string{"outcome"}),
		storeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sprachraum",
			Subsystem: "leads",
			Name:      "store_latency_seconds",
			Help:      "Latency of the spreadsheet store call",
			Buckets:   prometheus.DefBuckets,
		}),
		emailsSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sprachraum",
			Subsystem: "leads",
			Name:      "emails_sent_total",
			Help:      "Total submission emails dispatched per recipient kind",
		}, []string{"recipient"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.storeLatency, m.emailsSentTotal)
	return m
}

func (m *SubmissionMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *SubmissionMetrics) ObserveStoreLatency(seconds float64) {
	if m == nil {
		return
	}
	m.storeLatency.Observe(seconds)
}

func (m *SubmissionMetrics) ObserveEmailSent(recipient string) {
	if m == nil {
		return
	}
	m.emailsSentTotal.WithLabelValues(recipient).Inc()
}
