// Package service runs review moderation and keeps the vendor's rating
// aggregates in step with the set of APPROVED reviews.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vendorhub/internal/review/metrics"
	"vendorhub/internal/review/models"
	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/events"
	"vendorhub/pkg/platform/sentinel"
	"vendorhub/pkg/platform/validation"
	"vendorhub/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, r *models.Review) error
	FindByID(ctx context.Context, reviewID id.ReviewID) (*models.Review, error)
	ListByVendor(ctx context.Context, vendorID id.VendorID, filter models.ListFilter) ([]*models.Review, error)
	HasApproved(ctx context.Context, vendorID id.VendorID, email string, exclude id.ReviewID) (bool, error)
	Execute(ctx context.Context, reviewID id.ReviewID, validate func(*models.Review) error, mutate func(*models.Review)) (*models.Review, error)
	Delete(ctx context.Context, reviewID id.ReviewID) error
	Stats(ctx context.Context, vendorID id.VendorID) (*models.Stats, error)
}

var errDuplicateApproved = dErrors.New(dErrors.CodeConflict, "customer already has an approved review for this vendor")

type Service struct {
	reviews    Store
	vendors    VendorLookup
	recomputer MetricsRecomputer
	events     events.Sink
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
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

func New(reviews Store, vendors VendorLookup, recomputer MetricsRecomputer, opts ...Option) *Service {
	s := &Service{
		reviews:    reviews,
		vendors:    vendors,
		recomputer: recomputer,
		logger:     slog.Default(),
		tracer:     otel.Tracer("vendorhub/review"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Submit records a PENDING review. A customer with an APPROVED review for the
// vendor cannot submit another; a REJECTED one does not block.
func (s *Service) Submit(ctx context.Context, vendorID id.VendorID, sub models.Submission) (*models.Review, error) {
	sub.Normalize()
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if err := s.vendors.EnsureExists(ctx, vendorID); err != nil {
		return nil, err
	}
	exists, err := s.reviews.HasApproved(ctx, vendorID, sub.CustomerEmail, id.ReviewID(uuid.Nil))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing reviews")
	}
	if exists {
		return nil, errDuplicateApproved
	}

	r, err := models.NewReview(id.ReviewID(uuid.New()), vendorID, sub, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.AsValidation(err)
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save review")
	}

	s.logger.InfoContext(ctx, "review submitted",
		"review_id", r.ID.String(),
		"vendor_id", vendorID.String(),
		"sentiment", string(r.Sentiment),
	)
	s.metrics.IncSubmitted()
	s.emit(ctx, events.ReviewSubmitted, r, "", string(r.Sentiment))
	return r, nil
}

func (s *Service) Get(ctx context.Context, reviewID id.ReviewID) (*models.Review, error) {
	r, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, wrapReviewErr(err, "failed to load review")
	}
	return r, nil
}

func (s *Service) ListByVendor(ctx context.Context, vendorID id.VendorID, filter models.ListFilter) ([]*models.Review, error) {
	reviews, err := s.reviews.ListByVendor(ctx, vendorID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reviews")
	}
	return reviews, nil
}

func (s *Service) Stats(ctx context.Context, vendorID id.VendorID) (*models.Stats, error) {
	stats, err := s.reviews.Stats(ctx, vendorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute review stats")
	}
	return stats, nil
}

func (s *Service) Approve(ctx context.Context, reviewID id.ReviewID, moderator string) (*models.Review, error) {
	return s.moderate(ctx, reviewID, models.StatusApproved, moderator, "", events.ReviewApproved)
}

func (s *Service) Reject(ctx context.Context, reviewID id.ReviewID, moderator, reason string) (*models.Review, error) {
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return s.moderate(ctx, reviewID, models.StatusRejected, moderator, reason, events.ReviewRejected)
}

func (s *Service) Flag(ctx context.Context, reviewID id.ReviewID, moderator, reason string) (*models.Review, error) {
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return s.moderate(ctx, reviewID, models.StatusFlagged, moderator, reason, events.ReviewFlagged)
}

func (s *Service) Hide(ctx context.Context, reviewID id.ReviewID, moderator, reason string) (*models.Review, error) {
	return s.moderate(ctx, reviewID, models.StatusHidden, moderator, reason, events.ReviewHidden)
}

type moderationInput struct {
	Moderator string `json:"moderated_by" validate:"required,max=100"`
	Note      string `json:"reason" validate:"max=500"`
}

// moderate applies a moderation decision. When the review enters or leaves
// APPROVED the vendor's metrics are recomputed after the review is committed;
// a recompute failure is returned with the review already updated.
func (s *Service) moderate(ctx context.Context, reviewID id.ReviewID, target models.Status, moderator, note string, evType events.Type) (*models.Review, error) {
	if !models.IsModerationTarget(target) {
		return nil, dErrors.New(dErrors.CodeValidation, "reviews cannot return to PENDING")
	}
	if err := validation.Struct(moderationInput{Moderator: moderator, Note: note}); err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, "review.Moderate", trace.WithAttributes(
		attribute.String("review_id", reviewID.String()),
		attribute.String("target_status", string(target)),
	))
	defer span.End()

	if target == models.StatusApproved {
		current, err := s.Get(ctx, reviewID)
		if err != nil {
			return nil, err
		}
		clash, err := s.reviews.HasApproved(ctx, current.VendorID, current.CustomerEmail, reviewID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing reviews")
		}
		if clash {
			return nil, errDuplicateApproved
		}
	}

	var previous models.Status
	now := requestcontext.Now(ctx)
	r, err := s.reviews.Execute(ctx, reviewID,
		func(r *models.Review) error {
			previous = r.Status
			return nil
		},
		func(r *models.Review) { r.ApplyModeration(target, moderator, note, now) },
	)
	if err != nil {
		span.RecordError(err)
		return nil, wrapReviewErr(err, "failed to moderate review")
	}

	s.logger.InfoContext(ctx, "review moderated",
		"review_id", reviewID.String(),
		"from", string(previous),
		"to", string(target),
		"moderated_by", moderator,
	)
	s.metrics.IncModeration(string(target))
	s.emit(ctx, evType, r, moderator, note)

	if previous == models.StatusApproved || target == models.StatusApproved {
		if err := s.recompute(ctx, r.VendorID); err != nil {
			span.RecordError(err)
			return r, err
		}
	}
	return r, nil
}

type responseInput struct {
	Text string `json:"response" validate:"required,max=1000"`
}

func (s *Service) Respond(ctx context.Context, reviewID id.ReviewID, text string) (*models.Review, error) {
	if err := validation.Struct(responseInput{Text: text}); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	r, err := s.reviews.Execute(ctx, reviewID,
		func(*models.Review) error { return nil },
		func(r *models.Review) { r.ApplyResponse(text, now) },
	)
	if err != nil {
		return nil, wrapReviewErr(err, "failed to save vendor response")
	}
	return r, nil
}

func (s *Service) MarkHelpful(ctx context.Context, reviewID id.ReviewID) (*models.Review, error) {
	return s.vote(ctx, reviewID, true)
}

func (s *Service) MarkNotHelpful(ctx context.Context, reviewID id.ReviewID) (*models.Review, error) {
	return s.vote(ctx, reviewID, false)
}

func (s *Service) vote(ctx context.Context, reviewID id.ReviewID, helpful bool) (*models.Review, error) {
	now := requestcontext.Now(ctx)
	r, err := s.reviews.Execute(ctx, reviewID,
		func(*models.Review) error { return nil },
		func(r *models.Review) { r.ApplyVote(helpful, now) },
	)
	if err != nil {
		return nil, wrapReviewErr(err, "failed to record vote")
	}
	kind := "helpful"
	if !helpful {
		kind = "not_helpful"
	}
	s.metrics.IncVote(kind)
	return r, nil
}

// Delete removes the review and recomputes the vendor's metrics.
func (s *Service) Delete(ctx context.Context, reviewID id.ReviewID) error {
	r, err := s.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return wrapReviewErr(err, "failed to delete review")
	}
	s.logger.InfoContext(ctx, "review deleted",
		"review_id", reviewID.String(),
		"vendor_id", r.VendorID.String(),
	)
	return s.recompute(ctx, r.VendorID)
}

func (s *Service) recompute(ctx context.Context, vendorID id.VendorID) error {
	if err := s.recomputer.RecomputeMetrics(ctx, vendorID); err != nil {
		s.metrics.IncRecomputeFailure()
		s.logger.ErrorContext(ctx, "vendor metrics recompute failed after review change",
			"vendor_id", vendorID.String(),
			"error", err,
		)
		var de *dErrors.Error
		if errors.As(err, &de) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to recompute vendor metrics")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, typ events.Type, r *models.Review, actor, detail string) {
	if s.events == nil {
		return
	}
	ev := events.Event{
		Type:       typ,
		VendorID:   r.VendorID,
		EntityKind: id.EntityReview,
		EntityID:   r.ID.String(),
		Actor:      actor,
		Detail:     detail,
		RequestID:  requestcontext.RequestID(ctx),
		OccurredAt: requestcontext.Now(ctx),
	}
	if err := s.events.Emit(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "failed to emit review event",
			"event_type", string(typ),
			"review_id", r.ID.String(),
			"error", err,
		)
	}
}

func wrapReviewErr(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "review not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return errDuplicateApproved
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
