package flowsmonitor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/theoremus-urban-solutions/flows-rt-monitor/monitor"
)

// Metrics exports poll loop results to Prometheus.
type Metrics struct {
	polls          *prometheus.CounterVec
	changes        *prometheus.CounterVec
	newRecords     *prometheus.CounterVec
	updatedRecords *prometheus.CounterVec
	records        *prometheus.GaugeVec
	lastSuccess    *prometheus.GaugeVec
	duration       *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flows_polls_total",
			Help: "Poll iterations by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flows_snapshot_changes_total",
			Help: "Poll iterations whose snapshot differed from the previous one.",
		}, []string{"endpoint"}),
		newRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flows_new_records_total",
			Help: "Segments seen for the first time.",
		}, []string{"endpoint"}),
		updatedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flows_updated_records_total",
			Help: "Segments whose speed changed between polls.",
		}, []string{"endpoint"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "flows_snapshot_records",
			Help: "Number of segments in the latest snapshot.",
		}, []string{"endpoint"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "flows_last_success_timestamp_seconds",
			Help: "Unix time of the last successful poll.",
		}, []string{"endpoint"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flows_poll_duration_seconds",
			Help:    "Time from fetch start to log row written.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"endpoint"}),
	}
	reg.MustRegister(m.polls, m.changes, m.newRecords, m.updatedRecords, m.records, m.lastSuccess, m.duration)
	return m
}

// ObserveIteration implements monitor.Recorder.
func (m *Metrics) ObserveIteration(endpoint string, r monitor.IterationResult) {
	m.polls.WithLabelValues(endpoint, r.Outcome.String()).Inc()
	m.duration.WithLabelValues(endpoint).Observe(r.Duration.Seconds())
	if r.Outcome != monitor.OutcomeOK {
		return
	}
	if r.Report.HasChanges {
		m.changes.WithLabelValues(endpoint).Inc()
	}
	m.newRecords.WithLabelValues(endpoint).Add(float64(r.Report.NewCount))
	m.updatedRecords.WithLabelValues(endpoint).Add(float64(r.Report.UpdatedCount))
	m.records.WithLabelValues(endpoint).Set(float64(r.Report.TotalCount))
	m.lastSuccess.WithLabelValues(endpoint).Set(float64(r.Started.Unix()))
}
