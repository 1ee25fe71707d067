package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Submitted         prometheus.Counter
	Moderations       *prometheus.CounterVec
	Votes             *prometheus.CounterVec
	RecomputeFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submitted: f.NewCounter(prometheus.CounterOpts{
			Name: "vendorhub_reviews_submitted_total",
			Help: "Total number of reviews submitted",
		}),
		Moderations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vendorhub_review_moderations_total",
			Help: "Review moderation transitions by target status",
		}, []string{"status"}),
		Votes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vendorhub_review_votes_total",
			Help: "Helpfulness votes by kind",
		}, []string{"kind"}),
		RecomputeFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "vendorhub_review_recompute_failures_total",
			Help: "Vendor metric recomputes that failed after a committed review change",
		}),
	}
}

func (m *Metrics) IncSubmitted() {
	if m == nil {
		return
	}
	m.Submitted.Inc()
}

func (m *Metrics) IncModeration(status string) {
	if m == nil {
		return
	}
	m.Moderations.WithLabelValues(status).Inc()
}

func (m *Metrics) IncVote(kind string) {
	if m == nil {
		return
	}
	m.Votes.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncRecomputeFailure() {
	if m == nil {
		return
	}
	m.RecomputeFailures.Inc()
}
