//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vendorhub/internal/notification/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/testutil/containers"
)

type PostgresNotificationSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *PostgresStore
	ctx      context.Context
	vendorID id.VendorID
	now      time.Time
}

func TestPostgresNotificationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresNotificationSuite))
}

func (s *PostgresNotificationSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresNotificationSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "vendor_notifications", "vendors"))
	s.now = time.Now().UTC().Truncate(time.Microsecond)
	s.vendorID = id.VendorID(uuid.New())
	_, err := s.postgres.DB.ExecContext(s.ctx,
		`INSERT INTO vendors (id, name, contact_email, status, created_at, updated_at) VALUES ($1, 'Acme', $2, 'PENDING', $3, $3)`,
		s.vendorID.String(), s.vendorID.String()+"@acme.test", s.now)
	s.Require().NoError(err)
}

func (s *PostgresNotificationSuite) create(d models.Draft) *models.Notification {
	d.Type, d.Title, d.Message = "DOCUMENT", "Title", "Message"
	n, err := models.NewNotification(id.NotificationID(uuid.New()), s.vendorID, d, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, n))
	return n
}

func (s *PostgresNotificationSuite) TestLifecycle() {
	past := s.now.Add(-time.Hour)
	action := s.create(models.Draft{
		ActionRequired: true,
		ActionDeadline: &past,
		Priority:       models.PriorityUrgent,
		Related:        models.Related{Kind: id.EntityDocument, ID: uuid.NewString()},
	})
	plain := s.create(models.Draft{})

	got, err := s.store.FindByID(s.ctx, action.ID)
	s.Require().NoError(err)
	s.Equal(action.Related, got.Related)
	s.True(past.Equal(*got.ActionDeadline))

	overdue, err := s.store.ListOverdueActions(s.ctx, s.vendorID, s.now)
	s.Require().NoError(err)
	s.Len(overdue, 1)

	count, err := s.store.MarkAllRead(s.ctx, s.vendorID, s.now)
	s.Require().NoError(err)
	s.Equal(2, count)

	_, err = s.store.Execute(s.ctx, action.ID, func(n *models.Notification) error { return n.ApplyActionCompleted(s.now) })
	s.Require().NoError(err)
	_, err = s.store.Execute(s.ctx, plain.ID, func(n *models.Notification) error {
		n.ApplyDismiss(s.now)
		return nil
	})
	s.Require().NoError(err)

	stats, err := s.store.Stats(s.ctx, s.vendorID)
	s.Require().NoError(err)
	s.Equal(1, stats.Total)
	s.Zero(stats.Unread)
	s.Zero(stats.PendingActions)

	s.Require().NoError(s.store.Delete(s.ctx, plain.ID))
	remaining, err := s.store.ListByVendor(s.ctx, s.vendorID, models.ListFilter{Status: models.StatusDeleted})
	s.Require().NoError(err)
	s.Empty(remaining)
}
