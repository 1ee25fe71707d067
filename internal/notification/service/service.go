// Package service keeps vendor notifications and their follow-up actions.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vendorhub/internal/notification/metrics"
	"vendorhub/internal/notification/models"
	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/sentinel"
	"vendorhub/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, n *models.Notification) error
	FindByID(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error)
	ListByVendor(ctx context.Context, vendorID id.VendorID, filter models.ListFilter) ([]*models.Notification, error)
	ListPendingActions(ctx context.Context, vendorID id.VendorID) ([]*models.Notification, error)
	ListOverdueActions(ctx context.Context, vendorID id.VendorID, now time.Time) ([]*models.Notification, error)
	Execute(ctx context.Context, notificationID id.NotificationID, mutate func(*models.Notification) error) (*models.Notification, error)
	MarkAllRead(ctx context.Context, vendorID id.VendorID, now time.Time) (int, error)
	Delete(ctx context.Context, notificationID id.NotificationID) error
	Stats(ctx context.Context, vendorID id.VendorID) (*models.Stats, error)
}

type Service struct {
	notifications Store
	vendors       VendorLookup
	logger        *slog.Logger
	metrics       *metrics.Metrics
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

func New(notifications Store, vendors VendorLookup, opts ...Option) *Service {
	s := &Service{
		notifications: notifications,
		vendors:       vendors,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create records an UNREAD notification for an existing vendor.
func (s *Service) Create(ctx context.Context, vendorID id.VendorID, draft models.Draft) (*models.Notification, error) {
	n, err := s.create(ctx, vendorID, draft)
	if err != nil {
		return nil, err
	}
	s.metrics.IncCreated("api")
	return n, nil
}

// Record is Create for workflow events.
func (s *Service) Record(ctx context.Context, vendorID id.VendorID, draft models.Draft) (*models.Notification, error) {
	n, err := s.create(ctx, vendorID, draft)
	if err != nil {
		return nil, err
	}
	s.metrics.IncCreated("tracker")
	return n, nil
}

func (s *Service) create(ctx context.Context, vendorID id.VendorID, draft models.Draft) (*models.Notification, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if err := s.vendors.EnsureExists(ctx, vendorID); err != nil {
		return nil, err
	}
	n, err := models.NewNotification(id.NotificationID(uuid.New()), vendorID, draft, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.AsValidation(err)
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save notification")
	}
	s.logger.InfoContext(ctx, "notification created",
		"notification_id", n.ID.String(),
		"vendor_id", vendorID.String(),
		"notification_type", n.Type,
		"priority", string(n.Priority),
	)
	return n, nil
}

func (s *Service) Get(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	n, err := s.notifications.FindByID(ctx, notificationID)
	if err != nil {
		return nil, wrapNotificationErr(err, "failed to load notification")
	}
	return n, nil
}

func (s *Service) ListByVendor(ctx context.Context, vendorID id.VendorID, filter models.ListFilter) ([]*models.Notification, error) {
	out, err := s.notifications.ListByVendor(ctx, vendorID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return out, nil
}

func (s *Service) ListUnread(ctx context.Context, vendorID id.VendorID) ([]*models.Notification, error) {
	return s.ListByVendor(ctx, vendorID, models.ListFilter{Status: models.StatusUnread})
}

func (s *Service) ListPendingActions(ctx context.Context, vendorID id.VendorID) ([]*models.Notification, error) {
	out, err := s.notifications.ListPendingActions(ctx, vendorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending actions")
	}
	return out, nil
}

func (s *Service) ListOverdueActions(ctx context.Context, vendorID id.VendorID) ([]*models.Notification, error) {
	out, err := s.notifications.ListOverdueActions(ctx, vendorID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list overdue actions")
	}
	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	now := requestcontext.Now(ctx)
	return s.transition(ctx, notificationID, "read", func(n *models.Notification) error { return n.ApplyRead(now) })
}

// MarkAllRead reads every UNREAD notification of the vendor with one shared
// read time and returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context, vendorID id.VendorID) (int, error) {
	count, err := s.notifications.MarkAllRead(ctx, vendorID, requestcontext.Now(ctx))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notifications read")
	}
	s.logger.InfoContext(ctx, "notifications marked read",
		"vendor_id", vendorID.String(),
		"count", count,
	)
	if count > 0 {
		s.metrics.IncTransition("read_all")
	}
	return count, nil
}

func (s *Service) Archive(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	now := requestcontext.Now(ctx)
	return s.transition(ctx, notificationID, "archive", func(n *models.Notification) error { return n.ApplyArchive(now) })
}

func (s *Service) Dismiss(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	now := requestcontext.Now(ctx)
	return s.transition(ctx, notificationID, "dismiss", func(n *models.Notification) error {
		n.ApplyDismiss(now)
		return nil
	})
}

func (s *Service) CompleteAction(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	now := requestcontext.Now(ctx)
	return s.transition(ctx, notificationID, "complete_action", func(n *models.Notification) error { return n.ApplyActionCompleted(now) })
}

func (s *Service) transition(ctx context.Context, notificationID id.NotificationID, op string, apply func(*models.Notification) error) (*models.Notification, error) {
	n, err := s.notifications.Execute(ctx, notificationID, apply)
	if err != nil {
		return nil, wrapNotificationErr(err, "failed to update notification")
	}
	s.metrics.IncTransition(op)
	return n, nil
}

// Delete removes the notification record.
func (s *Service) Delete(ctx context.Context, notificationID id.NotificationID) error {
	if err := s.notifications.Delete(ctx, notificationID); err != nil {
		return wrapNotificationErr(err, "failed to delete notification")
	}
	s.logger.InfoContext(ctx, "notification deleted", "notification_id", notificationID.String())
	return nil
}

func (s *Service) Stats(ctx context.Context, vendorID id.VendorID) (*models.Stats, error) {
	stats, err := s.notifications.Stats(ctx, vendorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute notification stats")
	}
	return stats, nil
}

func wrapNotificationErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "notification not found")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
