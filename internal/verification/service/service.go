// Package service runs verification cases: initiation, assignment,
// completion and cancellation. An approving completion marks the vendor
// verified once the case itself is committed.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vendorhub/internal/verification/metrics"
	"vendorhub/internal/verification/models"
	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/events"
	"vendorhub/pkg/platform/sentinel"
	"vendorhub/pkg/platform/validation"
	"vendorhub/pkg/requestcontext"
)

const defaultHighPriorityLimit = 10

type Store interface {
	Create(ctx context.Context, c *models.Case) error
	FindByID(ctx context.Context, caseID id.CaseID) (*models.Case, error)
	ListByVendor(ctx context.Context, vendorID id.VendorID) ([]*models.Case, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*models.Case, error)
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Case, error)
	ListHighPriority(ctx context.Context, limit int) ([]*models.Case, error)
	Execute(ctx context.Context, caseID id.CaseID, validate func(*models.Case) error, mutate func(*models.Case)) (*models.Case, error)
	Stats(ctx context.Context, vendorID id.VendorID) (*models.Stats, error)
}

type Service struct {
	cases    Store
	vendors  VendorLookup
	verifier VendorVerifier
	events   events.Sink
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
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

func New(cases Store, vendors VendorLookup, verifier VendorVerifier, opts ...Option) *Service {
	s := &Service{
		cases:    cases,
		vendors:  vendors,
		verifier: verifier,
		logger:   slog.Default(),
		tracer:   otel.Tracer("vendorhub/verification"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Initiate opens a PENDING, MEDIUM priority case for the vendor.
func (s *Service) Initiate(ctx context.Context, vendorID id.VendorID, verificationType, initiatedBy string) (*models.Case, error) {
	if err := s.vendors.EnsureExists(ctx, vendorID); err != nil {
		return nil, err
	}
	c, err := models.NewCase(id.CaseID(uuid.New()), vendorID, verificationType, initiatedBy, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.AsValidation(err)
	}
	if err := s.cases.Create(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save verification case")
	}

	s.logger.InfoContext(ctx, "verification case initiated",
		"case_id", c.ID.String(),
		"vendor_id", vendorID.String(),
		"verification_type", c.VerificationType,
	)
	s.metrics.IncInitiated()
	s.emit(ctx, events.CaseInitiated, c, c.InitiatedBy, c.VerificationType)
	return c, nil
}

func (s *Service) Get(ctx context.Context, caseID id.CaseID) (*models.Case, error) {
	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		return nil, wrapCaseErr(err, "failed to load verification case")
	}
	return c, nil
}

func (s *Service) ListByVendor(ctx context.Context, vendorID id.VendorID) ([]*models.Case, error) {
	cases, err := s.cases.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list verification cases")
	}
	return cases, nil
}

// Assign sets the assignee and moves the case to IN_PROGRESS from any state.
func (s *Service) Assign(ctx context.Context, caseID id.CaseID, assignedTo string) (*models.Case, error) {
	assignedTo = strings.TrimSpace(assignedTo)
	if assignedTo == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "assigned_to is required")
	}
	if len(assignedTo) > 100 {
		return nil, dErrors.New(dErrors.CodeValidation, "assigned_to must be at most 100 characters")
	}
	now := requestcontext.Now(ctx)
	c, err := s.cases.Execute(ctx, caseID,
		func(*models.Case) error { return nil },
		func(c *models.Case) { c.ApplyAssign(assignedTo, now) },
	)
	if err != nil {
		return nil, wrapCaseErr(err, "failed to assign verification case")
	}
	s.logger.InfoContext(ctx, "verification case assigned",
		"case_id", caseID.String(),
		"assigned_to", assignedTo,
	)
	s.emit(ctx, events.CaseAssigned, c, assignedTo, assignedTo)
	return c, nil
}

// Complete closes an open case as COMPLETED or REJECTED. An approving
// completion then marks the vendor verified; if that fails the case stays
// completed and the error is returned so the caller can Resync.
func (s *Service) Complete(ctx context.Context, caseID id.CaseID, done models.Completion) (*models.Case, error) {
	done.VerifiedBy = strings.TrimSpace(done.VerifiedBy)
	if err := done.Validate(); err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, "verification.Complete", trace.WithAttributes(
		attribute.String("case_id", caseID.String()),
		attribute.Bool("approved", done.Approved),
	))
	defer span.End()

	now := requestcontext.Now(ctx)
	c, err := s.cases.Execute(ctx, caseID,
		func(c *models.Case) error {
			if !c.Status.AcceptsDecision() {
				return dErrors.New(dErrors.CodeConflict, "verification case is already "+string(c.Status))
			}
			return nil
		},
		func(c *models.Case) { c.ApplyCompletion(done, now) },
	)
	if err != nil {
		span.RecordError(err)
		return nil, wrapCaseErr(err, "failed to complete verification case")
	}

	s.logger.InfoContext(ctx, "verification case completed",
		"case_id", caseID.String(),
		"vendor_id", c.VendorID.String(),
		"status", string(c.Status),
		"completed_by", done.VerifiedBy,
	)
	s.metrics.ObserveOutcome(string(c.Status), c.InitiatedAt, now)
	evType := events.CaseRejected
	if done.Approved {
		evType = events.CaseCompleted
	}
	s.emit(ctx, evType, c, done.VerifiedBy, string(c.Status))

	if done.Approved {
		if err := s.syncVendor(ctx, c); err != nil {
			span.RecordError(err)
			return c, err
		}
	}
	return c, nil
}

// Resync re-runs the vendor side effect of a COMPLETED case.
func (s *Service) Resync(ctx context.Context, caseID id.CaseID) (*models.Case, error) {
	c, err := s.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status != models.StatusCompleted {
		return nil, dErrors.New(dErrors.CodeConflict, "only completed cases can be resynced")
	}
	if err := s.syncVendor(ctx, c); err != nil {
		return c, err
	}
	return c, nil
}

func (s *Service) syncVendor(ctx context.Context, c *models.Case) error {
	if err := s.verifier.MarkVerified(ctx, c.VendorID, c.CompletedBy); err != nil {
		s.metrics.IncVendorSyncError()
		s.logger.ErrorContext(ctx, "vendor verification failed after case completion",
			"case_id", c.ID.String(),
			"vendor_id", c.VendorID.String(),
			"error", err,
		)
		var de *dErrors.Error
		if errors.As(err, &de) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark vendor verified")
	}
	return nil
}

type cancelInput struct {
	CancelledBy string `validate:"required,max=100"`
	Reason      string `validate:"max=1000"`
}

// Cancel closes a non-terminal case and drops its assignee.
func (s *Service) Cancel(ctx context.Context, caseID id.CaseID, cancelledBy, reason string) (*models.Case, error) {
	cancelledBy = strings.TrimSpace(cancelledBy)
	if err := validation.Struct(cancelInput{CancelledBy: cancelledBy, Reason: reason}); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	c, err := s.cases.Execute(ctx, caseID,
		func(c *models.Case) error {
			if c.Status.IsTerminal() {
				return dErrors.New(dErrors.CodeConflict, "verification case is already "+string(c.Status))
			}
			return nil
		},
		func(c *models.Case) { c.ApplyCancel(cancelledBy, reason, now) },
	)
	if err != nil {
		return nil, wrapCaseErr(err, "failed to cancel verification case")
	}
	s.logger.InfoContext(ctx, "verification case cancelled",
		"case_id", caseID.String(),
		"cancelled_by", cancelledBy,
	)
	s.metrics.ObserveOutcome(string(models.StatusCancelled), c.InitiatedAt, time.Time{})
	s.emit(ctx, events.CaseCancelled, c, cancelledBy, reason)
	return c, nil
}

func (s *Service) UpdatePriority(ctx context.Context, caseID id.CaseID, raw models.Priority) (*models.Case, error) {
	priority, err := models.ParsePriority(string(raw))
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	c, err := s.cases.Execute(ctx, caseID,
		func(*models.Case) error { return nil },
		func(c *models.Case) { c.ApplyPriority(priority, now) },
	)
	if err != nil {
		return nil, wrapCaseErr(err, "failed to update priority")
	}
	s.emit(ctx, events.CasePriorityChanged, c, "", string(priority))
	return c, nil
}

// Schedule sets the case expiry and next review dates. At least one is required.
func (s *Service) Schedule(ctx context.Context, caseID id.CaseID, expiry, nextReview *time.Time) (*models.Case, error) {
	if expiry == nil && nextReview == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "expiry_date or next_review_date is required")
	}
	now := requestcontext.Now(ctx)
	c, err := s.cases.Execute(ctx, caseID,
		func(*models.Case) error { return nil },
		func(c *models.Case) { c.ApplySchedule(expiry, nextReview, now) },
	)
	if err != nil {
		return nil, wrapCaseErr(err, "failed to schedule verification case")
	}
	return c, nil
}

func (s *Service) ListOverdue(ctx context.Context) ([]*models.Case, error) {
	cases, err := s.cases.ListOverdue(ctx, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list overdue cases")
	}
	return cases, nil
}

func (s *Service) ListExpiring(ctx context.Context, days int) ([]*models.Case, error) {
	if days <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "days must be positive")
	}
	now := requestcontext.Now(ctx)
	cases, err := s.cases.ListExpiringBetween(ctx, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list expiring cases")
	}
	return cases, nil
}

// ListHighPriority returns open cases, most urgent first. A non-positive
// limit falls back to 10.
func (s *Service) ListHighPriority(ctx context.Context, limit int) ([]*models.Case, error) {
	if limit <= 0 {
		limit = defaultHighPriorityLimit
	}
	cases, err := s.cases.ListHighPriority(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list high priority cases")
	}
	return cases, nil
}

func (s *Service) Stats(ctx context.Context, vendorID id.VendorID) (*models.Stats, error) {
	stats, err := s.cases.Stats(ctx, vendorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute verification stats")
	}
	return stats, nil
}

func (s *Service) emit(ctx context.Context, typ events.Type, c *models.Case, actor, detail string) {
	if s.events == nil {
		return
	}
	ev := events.Event{
		Type:       typ,
		VendorID:   c.VendorID,
		EntityKind: id.EntityVerificationCase,
		EntityID:   c.ID.String(),
		Actor:      actor,
		Detail:     detail,
		RequestID:  requestcontext.RequestID(ctx),
		OccurredAt: requestcontext.Now(ctx),
	}
	if err := s.events.Emit(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "failed to emit verification event",
			"event_type", string(typ),
			"case_id", c.ID.String(),
			"error", err,
		)
	}
}

func wrapCaseErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "verification case not found")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
