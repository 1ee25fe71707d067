package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Uploaded      prometheus.Counter
	UploadedBytes prometheus.Counter
	Decisions     *prometheus.CounterVec
	BlobFailures  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Uploaded: f.NewCounter(prometheus.CounterOpts{
			Name: "vendorhub_documents_uploaded_total",
			Help: "Total number of documents uploaded",
		}),
		UploadedBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "vendorhub_documents_uploaded_bytes_total",
			Help: "Total payload bytes accepted by document upload",
		}),
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vendorhub_document_decisions_total",
			Help: "Document verification decisions by outcome",
		}, []string{"outcome"}),
		BlobFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vendorhub_document_blob_failures_total",
			Help: "Blob store failures by operation",
		}, []string{"op"}),
	}
}

func (m *Metrics) ObserveUpload(size int64) {
	if m == nil {
		return
	}
	m.Uploaded.Inc()
	m.UploadedBytes.Add(float64(size))
}

func (m *Metrics) IncDecision(outcome string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncBlobFailure(op string) {
	if m == nil {
		return
	}
	m.BlobFailures.WithLabelValues(op).Inc()
}
