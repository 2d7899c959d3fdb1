package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "opptrack"

// Metrics counts ingestion outcomes. A nil *Metrics records nothing.
type Metrics struct {
	messages   prometheus.Counter
	recorded   *prometheus.CounterVec
	duplicates *prometheus.CounterVec
	audited    prometheus.Counter
	schedules  prometheus.Counter
	failures   *prometheus.CounterVec
}

// NewMetrics registers the ingestion collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		messages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ingest",
			Name:      "messages_total",
			Help:      "Raw messages accepted for ingestion.",
		}),
		recorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ingest",
			Name:      "events_recorded_total",
			Help:      "Events newly recorded, by type.",
		}, []string{"type"}),
		duplicates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ingest",
			Name:      "duplicates_total",
			Help:      "Event appends that resolved to an already stored event, by type.",
		}, []string{"type"}),
		audited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ingest",
			Name:      "audit_entries_recorded_total",
			Help:      "Audit entries newly recorded.",
		}),
		schedules: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ingest",
			Name:      "schedules_detected_total",
			Help:      "Messages in which a proposed interview time was found.",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ingest",
			Name:      "failures_total",
			Help:      "Ingestion failures, by step.",
		}, []string{"step"}),
	}
}

func (m *Metrics) message() {
	if m != nil {
		m.messages.Inc()
	}
}

func (m *Metrics) eventRecorded(eventType string) {
	if m != nil {
		m.recorded.WithLabelValues(eventType).Inc()
	}
}

func (m *Metrics) duplicate(eventType string) {
	if m != nil {
		m.duplicates.WithLabelValues(eventType).Inc()
	}
}

func (m *Metrics) auditRecorded() {
	if m != nil {
		m.audited.Inc()
	}
}

func (m *Metrics) scheduleDetected() {
	if m != nil {
		m.schedules.Inc()
	}
}

func (m *Metrics) failure(step string) {
	if m != nil {
		m.failures.WithLabelValues(step).Inc()
	}
}
