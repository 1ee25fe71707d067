// Package service implements the vendor lifecycle: registration, profile
// edits, manual status changes, verification and the derived rating metrics.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"vendorhub/internal/vendors/metrics"
	"vendorhub/internal/vendors/models"
	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/events"
	"vendorhub/pkg/platform/sentinel"
	"vendorhub/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, v *models.Vendor) error
	FindByID(ctx context.Context, vendorID id.VendorID) (*models.Vendor, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Vendor, error)
	Stats(ctx context.Context) (*models.Stats, error)
	Execute(ctx context.Context, vendorID id.VendorID, validate func(*models.Vendor) error, mutate func(*models.Vendor)) (*models.Vendor, error)
}

// Service owns vendor records.
type Service struct {
	vendors   Store
	ratings   RatingSource
	documents DocumentCounter
	cases     CaseCounter
	events    events.Sink
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
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

// WithRatingSource enables RecomputeMetrics.
func WithRatingSource(src RatingSource) Option {
	return func(s *Service) {
		s.ratings = src
	}
}

// WithVerificationCounters enables IsFullyVerified.
func WithVerificationCounters(docs DocumentCounter, cases CaseCounter) Option {
	return func(s *Service) {
		s.documents = docs
		s.cases = cases
	}
}

func New(vendors Store, opts ...Option) *Service {
	s := &Service{
		vendors: vendors,
		logger:  slog.Default(),
		tracer:  otel.Tracer("vendorhub/vendor"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register creates a PENDING vendor. The contact email must be unused.
func (s *Service) Register(ctx context.Context, profile models.Profile) (*models.Vendor, error) {
	v, err := models.NewVendor(id.VendorID(uuid.New()), profile, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.AsValidation(err)
	}
	if err := s.vendors.Create(ctx, v); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "vendor with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create vendor")
	}

	s.logger.InfoContext(ctx, "vendor registered",
		"vendor_id", v.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.metrics.IncRegistered()
	s.emit(ctx, events.VendorRegistered, v, "", "")
	return v, nil
}

func (s *Service) Get(ctx context.Context, vendorID id.VendorID) (*models.Vendor, error) {
	v, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		return nil, wrapVendorErr(err, "failed to load vendor")
	}
	return v, nil
}

// EnsureExists is the ownership check child records run before creation.
func (s *Service) EnsureExists(ctx context.Context, vendorID id.VendorID) error {
	_, err := s.Get(ctx, vendorID)
	return err
}

func (s *Service) List(ctx context.Context, filter models.ListFilter) ([]*models.Vendor, error) {
	vendors, err := s.vendors.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list vendors")
	}
	return vendors, nil
}

func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	stats, err := s.vendors.Stats(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute vendor stats")
	}
	return stats, nil
}

// UpdateProfile replaces the vendor-supplied fields. Status, verification and
// metrics are untouched.
func (s *Service) UpdateProfile(ctx context.Context, vendorID id.VendorID, profile models.Profile) (*models.Vendor, error) {
	profile.Normalize()
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	v, err := s.vendors.Execute(ctx, vendorID,
		func(*models.Vendor) error { return nil },
		func(v *models.Vendor) { v.ApplyProfile(profile, now) },
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "vendor with this email already exists")
		}
		return nil, wrapVendorErr(err, "failed to update vendor")
	}
	return v, nil
}

// SetStatus overwrites the status. Any status may move to any other; the
// lifecycle rules that matter are MarkVerified and CanSell.
func (s *Service) SetStatus(ctx context.Context, vendorID id.VendorID, raw models.Status) (*models.Vendor, error) {
	status, err := models.ParseStatus(string(raw))
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var previous models.Status
	v, err := s.vendors.Execute(ctx, vendorID,
		func(v *models.Vendor) error {
			previous = v.Status
			return nil
		},
		func(v *models.Vendor) { v.ApplyStatus(status, now) },
	)
	if err != nil {
		return nil, wrapVendorErr(err, "failed to update vendor status")
	}

	s.logger.InfoContext(ctx, "vendor status changed",
		"vendor_id", vendorID.String(),
		"from", string(previous),
		"to", string(status),
	)
	s.metrics.IncStatus(string(status))
	s.emit(ctx, events.VendorStatusChanged, v, "", string(status))
	return v, nil
}

// Delete is a soft delete: the vendor becomes INACTIVE. Child records stay.
func (s *Service) Delete(ctx context.Context, vendorID id.VendorID) error {
	_, err := s.SetStatus(ctx, vendorID, models.StatusInactive)
	return err
}

// MarkVerified stamps the vendor as verified and promotes APPROVED to ACTIVE.
// It is idempotent apart from refreshing the verification stamp.
func (s *Service) MarkVerified(ctx context.Context, vendorID id.VendorID, verifiedBy string) (*models.Vendor, error) {
	if verifiedBy == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "verified_by is required")
	}
	ctx, span := s.tracer.Start(ctx, "vendor.MarkVerified",
		trace.WithAttributes(attribute.String("vendor_id", vendorID.String())))
	defer span.End()

	now := requestcontext.Now(ctx)
	v, err := s.vendors.Execute(ctx, vendorID,
		func(*models.Vendor) error { return nil },
		func(v *models.Vendor) { v.ApplyVerification(verifiedBy, now) },
	)
	if err != nil {
		span.RecordError(err)
		return nil, wrapVendorErr(err, "failed to mark vendor verified")
	}

	s.logger.InfoContext(ctx, "vendor verified",
		"vendor_id", vendorID.String(),
		"verified_by", verifiedBy,
		"status", string(v.Status),
	)
	s.metrics.IncVerified()
	s.emit(ctx, events.VendorVerified, v, verifiedBy, string(v.Status))
	return v, nil
}

// RecomputeMetrics rewrites averageRating and totalReviews from the APPROVED
// reviews. Safe to re-run at any time.
func (s *Service) RecomputeMetrics(ctx context.Context, vendorID id.VendorID) (*models.Vendor, error) {
	if s.ratings == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "rating source not configured")
	}
	ctx, span := s.tracer.Start(ctx, "vendor.RecomputeMetrics",
		trace.WithAttributes(attribute.String("vendor_id", vendorID.String())))
	defer span.End()
	defer s.metrics.ObserveRecompute(time.Now())

	sum, count, err := s.ratings.ApprovedTotals(ctx, vendorID)
	if err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to aggregate ratings")
	}
	average := models.MeanRating(sum, count)
	now := requestcontext.Now(ctx)
	v, err := s.vendors.Execute(ctx, vendorID,
		func(*models.Vendor) error { return nil },
		func(v *models.Vendor) { v.ApplyRatings(average, count, now) },
	)
	if err != nil {
		span.RecordError(err)
		return nil, wrapVendorErr(err, "failed to update vendor metrics")
	}

	s.logger.DebugContext(ctx, "vendor metrics recomputed",
		"vendor_id", vendorID.String(),
		"average_rating", average,
		"total_reviews", count,
	)
	return v, nil
}

// IsFullyVerified requires the verification flag, at least one verified
// document and at least one completed verification case. The counts are
// fetched concurrently.
func (s *Service) IsFullyVerified(ctx context.Context, vendorID id.VendorID) (*models.VerificationStatus, error) {
	if s.documents == nil || s.cases == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "verification counters not configured")
	}
	v, err := s.Get(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	var docs, cases int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.documents.CountVerified(gctx, vendorID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count verified documents")
		}
		docs = n
		return nil
	})
	g.Go(func() error {
		n, err := s.cases.CountCompleted(gctx, vendorID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count completed verifications")
		}
		cases = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.VerificationStatus{
		IsVerified:        v.IsVerified,
		VerifiedAt:        v.VerifiedAt,
		VerifiedBy:        v.VerifiedBy,
		VerifiedDocuments: docs,
		CompletedCases:    cases,
		FullyVerified:     v.IsVerified && docs > 0 && cases > 0,
		CanSell:           v.CanSell(),
	}, nil
}

func (s *Service) emit(ctx context.Context, typ events.Type, v *models.Vendor, actor, detail string) {
	if s.events == nil {
		return
	}
	ev := events.Event{
		Type:       typ,
		VendorID:   v.ID,
		EntityKind: id.EntityVendor,
		EntityID:   v.ID.String(),
		Actor:      actor,
		Detail:     detail,
		RequestID:  requestcontext.RequestID(ctx),
		OccurredAt: requestcontext.Now(ctx),
	}
	if err := s.events.Emit(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "failed to emit vendor event",
			"event_type", string(typ),
			"vendor_id", v.ID.String(),
			"error", err,
		)
	}
}

func wrapVendorErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "vendor not found")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
