package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Created        *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
	TrackerSkipped *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Created: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vendorhub_notifications_created_total",
			Help: "Notifications created by source (api or tracker)",
		}, []string{"source"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vendorhub_notification_transitions_total",
			Help: "Notification state changes by operation",
		}, []string{"operation"}),
		TrackerSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vendorhub_notification_tracker_skipped_total",
			Help: "Workflow events the tracker did not turn into notifications",
		}, []string{"reason"}),
	}
}

func (m *Metrics) IncCreated(source string) {
	if m == nil {
		return
	}
	m.Created.WithLabelValues(source).Inc()
}

func (m *Metrics) IncTransition(operation string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncTrackerSkipped(reason string) {
	if m == nil {
		return
	}
	m.TrackerSkipped.WithLabelValues(reason).Inc()
}
