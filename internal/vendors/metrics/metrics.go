package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the vendor lifecycle: registrations, status moves,
// verifications and the cost of rating recomputation.
type Metrics struct {
	Registered        prometheus.Counter
	StatusTransitions *prometheus.CounterVec
	Verified          prometheus.Counter
	RecomputeDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registered: f.NewCounter(prometheus.CounterOpts{
			Name: "vendorhub_vendors_registered_total",
			Help: "Total number of vendors registered",
		}),
		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vendorhub_vendor_status_transitions_total",
			Help: "Vendor status changes by target status",
		}, []string{"status"}),
		Verified: f.NewCounter(prometheus.CounterOpts{
			Name: "vendorhub_vendors_verified_total",
			Help: "Total number of MarkVerified applications",
		}),
		RecomputeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vendorhub_vendor_metrics_recompute_duration_seconds",
			Help:    "Duration of vendor rating recomputation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncRegistered() {
	if m == nil {
		return
	}
	m.Registered.Inc()
}

func (m *Metrics) IncStatus(status string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) IncVerified() {
	if m == nil {
		return
	}
	m.Verified.Inc()
}

// ObserveRecompute records the duration since start.
func (m *Metrics) ObserveRecompute(start time.Time) {
	if m == nil {
		return
	}
	m.RecomputeDuration.Observe(time.Since(start).Seconds())
}
