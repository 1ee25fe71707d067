package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Initiated        prometheus.Counter
	Outcomes         *prometheus.CounterVec
	CaseDuration     prometheus.Histogram
	VendorSyncErrors prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Initiated: f.NewCounter(prometheus.CounterOpts{
			Name: "vendorhub_verification_cases_initiated_total",
			Help: "Total number of verification cases initiated",
		}),
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vendorhub_verification_case_outcomes_total",
			Help: "Verification cases closed by resulting status",
		}, []string{"status"}),
		CaseDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vendorhub_verification_case_duration_days",
			Help:    "Days from initiation to completion",
			Buckets: []float64{1, 2, 5, 10, 20, 40, 90},
		}),
		VendorSyncErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "vendorhub_verification_vendor_sync_errors_total",
			Help: "Vendor verification side effects that failed after a committed case",
		}),
	}
}

func (m *Metrics) IncInitiated() {
	if m == nil {
		return
	}
	m.Initiated.Inc()
}

func (m *Metrics) ObserveOutcome(status string, initiated, completed time.Time) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(status).Inc()
	if !completed.IsZero() {
		m.CaseDuration.Observe(completed.Sub(initiated).Hours() / 24)
	}
}

func (m *Metrics) IncVendorSyncError() {
	if m == nil {
		return
	}
	m.VendorSyncErrors.Inc()
}
