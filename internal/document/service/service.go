// Package service runs the document verification workflow: upload, review
// decisions, detail edits and lazy expiry queries.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vendorhub/internal/document/metrics"
	"vendorhub/internal/document/models"
	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/events"
	"vendorhub/pkg/platform/sentinel"
	"vendorhub/pkg/platform/validation"
	"vendorhub/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, d *models.Document) error
	FindByID(ctx context.Context, docID id.DocumentID) (*models.Document, error)
	ListByVendor(ctx context.Context, vendorID id.VendorID, docType string) ([]*models.Document, error)
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Document, error)
	ListExpiredBefore(ctx context.Context, now time.Time) ([]*models.Document, error)
	Execute(ctx context.Context, docID id.DocumentID, validate func(*models.Document) error, mutate func(*models.Document)) (*models.Document, error)
	Delete(ctx context.Context, docID id.DocumentID) error
	VendorStats(ctx context.Context, vendorID id.VendorID) (*models.VendorStats, error)
	VerificationStats(ctx context.Context) (*models.VerificationStats, error)
}

type Service struct {
	documents Store
	blobs     BlobStore
	vendors   VendorLookup
	events    events.Sink
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithEventSink(sink events.Sink) Option {
	return func(s *Service) {
		s.events = sink
	}
}

func New(documents Store, blobs BlobStore, vendors VendorLookup, opts ...Option) *Service {
	s := &Service{
		documents: documents,
		blobs:     blobs,
		vendors:   vendors,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Upload stores the payload and records a PENDING, NOT_VERIFIED document.
func (s *Service) Upload(ctx context.Context, vendorID id.VendorID, up models.Upload, data []byte) (*models.Document, error) {
	up.Normalize()
	if err := up.Validate(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "file is required")
	}
	if err := s.vendors.EnsureExists(ctx, vendorID); err != nil {
		return nil, err
	}

	ref, err := s.blobs.Put(ctx, data)
	if err != nil {
		s.metrics.IncBlobFailure("put")
		s.logger.ErrorContext(ctx, "failed to store document payload",
			"vendor_id", vendorID.String(),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to store document")
	}

	doc, err := models.NewDocument(id.DocumentID(uuid.New()), vendorID, up, ref, int64(len(data)), requestcontext.Now(ctx))
	if err != nil {
		s.discardBlob(ctx, ref)
		return nil, dErrors.AsValidation(err)
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		s.discardBlob(ctx, ref)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save document")
	}

	s.logger.InfoContext(ctx, "document uploaded",
		"document_id", doc.ID.String(),
		"vendor_id", vendorID.String(),
		"document_type", doc.DocumentType,
		"size", doc.FileSize,
	)
	s.metrics.ObserveUpload(doc.FileSize)
	s.emit(ctx, events.DocumentUploaded, doc, "", doc.DocumentType)
	return doc, nil
}

func (s *Service) Get(ctx context.Context, docID id.DocumentID) (*models.Document, error) {
	d, err := s.documents.FindByID(ctx, docID)
	if err != nil {
		return nil, wrapDocumentErr(err, "failed to load document")
	}
	return d, nil
}

// Download returns the record and its payload. The caller closes the reader.
func (s *Service) Download(ctx context.Context, docID id.DocumentID) (*models.Document, io.ReadCloser, error) {
	d, err := s.Get(ctx, docID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(ctx, d.BlobRef)
	if err != nil {
		s.metrics.IncBlobFailure("open")
		return nil, nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to read document")
	}
	return d, rc, nil
}

func (s *Service) ListByVendor(ctx context.Context, vendorID id.VendorID, docType string) ([]*models.Document, error) {
	docs, err := s.documents.ListByVendor(ctx, vendorID, docType)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return docs, nil
}

type decisionRequest struct {
	Actor string `json:"actor" validate:"required,max=100"`
	Notes string `json:"notes" validate:"max=1000"`
}

// Verify approves a document. Repeating it overwrites the stamp.
func (s *Service) Verify(ctx context.Context, docID id.DocumentID, verifiedBy, notes string) (*models.Document, error) {
	if err := validation.Struct(decisionRequest{Actor: verifiedBy, Notes: notes}); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	d, err := s.documents.Execute(ctx, docID,
		func(*models.Document) error { return nil },
		func(d *models.Document) { d.ApplyVerify(verifiedBy, notes, now) },
	)
	if err != nil {
		return nil, wrapDocumentErr(err, "failed to verify document")
	}
	s.logger.InfoContext(ctx, "document verified",
		"document_id", docID.String(),
		"verified_by", verifiedBy,
	)
	s.metrics.IncDecision("verified")
	s.emit(ctx, events.DocumentVerified, d, verifiedBy, d.DocumentType)
	return d, nil
}

// Reject fails a document. Repeating it overwrites the stamp.
func (s *Service) Reject(ctx context.Context, docID id.DocumentID, rejectedBy, reason string) (*models.Document, error) {
	if err := validation.Struct(decisionRequest{Actor: rejectedBy, Notes: reason}); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	d, err := s.documents.Execute(ctx, docID,
		func(*models.Document) error { return nil },
		func(d *models.Document) { d.ApplyReject(rejectedBy, reason, now) },
	)
	if err != nil {
		return nil, wrapDocumentErr(err, "failed to reject document")
	}
	s.logger.InfoContext(ctx, "document rejected",
		"document_id", docID.String(),
		"rejected_by", rejectedBy,
	)
	s.metrics.IncDecision("rejected")
	s.emit(ctx, events.DocumentRejected, d, rejectedBy, reason)
	return d, nil
}

func (s *Service) UpdateDetails(ctx context.Context, docID id.DocumentID, details models.Details) (*models.Document, error) {
	if err := validation.Struct(details); err != nil {
		return nil, err
	}
	if details.DocumentName != nil && *details.DocumentName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document_name must not be empty")
	}
	if details.DocumentType != nil && *details.DocumentType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document_type must not be empty")
	}
	now := requestcontext.Now(ctx)
	d, err := s.documents.Execute(ctx, docID,
		func(*models.Document) error { return nil },
		func(d *models.Document) { d.ApplyDetails(details, now) },
	)
	if err != nil {
		return nil, wrapDocumentErr(err, "failed to update document")
	}
	return d, nil
}

// Delete removes the record, then its payload. A payload that cannot be
// removed is logged and left behind.
func (s *Service) Delete(ctx context.Context, docID id.DocumentID) error {
	d, err := s.Get(ctx, docID)
	if err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, docID); err != nil {
		return wrapDocumentErr(err, "failed to delete document")
	}
	s.discardBlob(ctx, d.BlobRef)
	s.logger.InfoContext(ctx, "document deleted",
		"document_id", docID.String(),
		"vendor_id", d.VendorID.String(),
	)
	s.emit(ctx, events.DocumentDeleted, d, "", d.DocumentType)
	return nil
}

// ListExpiring returns documents expiring within the next days days.
func (s *Service) ListExpiring(ctx context.Context, days int) ([]*models.Document, error) {
	if days <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "days must be positive")
	}
	now := requestcontext.Now(ctx)
	docs, err := s.documents.ListExpiringBetween(ctx, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list expiring documents")
	}
	return docs, nil
}

func (s *Service) ListExpired(ctx context.Context) ([]*models.Document, error) {
	docs, err := s.documents.ListExpiredBefore(ctx, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list expired documents")
	}
	return docs, nil
}

func (s *Service) VendorStats(ctx context.Context, vendorID id.VendorID) (*models.VendorStats, error) {
	stats, err := s.documents.VendorStats(ctx, vendorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute document stats")
	}
	return stats, nil
}

func (s *Service) VerificationStats(ctx context.Context) (*models.VerificationStats, error) {
	stats, err := s.documents.VerificationStats(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute verification stats")
	}
	return stats, nil
}

func (s *Service) discardBlob(ctx context.Context, ref string) {
	if err := s.blobs.Delete(ctx, ref); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.IncBlobFailure("delete")
		s.logger.WarnContext(ctx, "failed to delete document payload",
			"blob_ref", ref,
			"error", err,
		)
	}
}

func (s *Service) emit(ctx context.Context, typ events.Type, d *models.Document, actor, detail string) {
	if s.events == nil {
		return
	}
	ev := events.Event{
		Type:       typ,
		VendorID:   d.VendorID,
		EntityKind: id.EntityDocument,
		EntityID:   d.ID.String(),
		Actor:      actor,
		Detail:     detail,
		RequestID:  requestcontext.RequestID(ctx),
		OccurredAt: requestcontext.Now(ctx),
	}
	if err := s.events.Emit(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "failed to emit document event",
			"event_type", string(typ),
			"document_id", d.ID.String(),
			"error", err,
		)
	}
}

func wrapDocumentErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "document not found")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
