package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vendorhub/internal/notification/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/sentinel"
)

type NotificationStoreSuite struct {
	suite.Suite
	store    *InMemory
	ctx      context.Context
	now      time.Time
	vendorID id.VendorID
}

func TestNotificationStoreSuite(t *testing.T) {
	suite.Run(t, new(NotificationStoreSuite))
}

func (s *NotificationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	s.vendorID = id.VendorID(uuid.New())
}

func (s *NotificationStoreSuite) add(vendorID id.VendorID, d models.Draft, created time.Time) *models.Notification {
	if d.Type == "" {
		d.Type = "GENERAL"
	}
	d.Title, d.Message = "Title", "Message"
	n, err := models.NewNotification(id.NotificationID(uuid.New()), vendorID, d, created)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, n))
	return n
}

func (s *NotificationStoreSuite) TestListByVendor() {
	older := s.add(s.vendorID, models.Draft{}, s.now.Add(-time.Hour))
	newer := s.add(s.vendorID, models.Draft{}, s.now)
	gone := s.add(s.vendorID, models.Draft{}, s.now)
	s.add(id.VendorID(uuid.New()), models.Draft{}, s.now)

	_, err := s.store.Execute(s.ctx, gone.ID, func(n *models.Notification) error {
		n.ApplyDismiss(s.now)
		return nil
	})
	s.Require().NoError(err)

	got, err := s.store.ListByVendor(s.ctx, s.vendorID, models.ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(newer.ID, got[0].ID)
	s.Equal(older.ID, got[1].ID)

	deleted, err := s.store.ListByVendor(s.ctx, s.vendorID, models.ListFilter{Status: models.StatusDeleted})
	s.Require().NoError(err)
	s.Require().Len(deleted, 1)
	s.Equal(gone.ID, deleted[0].ID)
}

func (s *NotificationStoreSuite) TestMarkAllReadSharesTimestamp() {
	a := s.add(s.vendorID, models.Draft{}, s.now)
	b := s.add(s.vendorID, models.Draft{}, s.now)
	archived := s.add(s.vendorID, models.Draft{}, s.now)
	other := s.add(id.VendorID(uuid.New()), models.Draft{}, s.now)

	_, err := s.store.Execute(s.ctx, archived.ID, func(n *models.Notification) error { return n.ApplyArchive(s.now) })
	s.Require().NoError(err)

	readAt := s.now.Add(time.Minute)
	count, err := s.store.MarkAllRead(s.ctx, s.vendorID, readAt)
	s.Require().NoError(err)
	s.Equal(2, count)

	for _, nid := range []id.NotificationID{a.ID, b.ID} {
		got, err := s.store.FindByID(s.ctx, nid)
		s.Require().NoError(err)
		s.Equal(models.StatusRead, got.Status)
		s.Equal(readAt, *got.ReadAt)
	}
	stillArchived, _ := s.store.FindByID(s.ctx, archived.ID)
	s.Equal(models.StatusArchived, stillArchived.Status)
	untouched, _ := s.store.FindByID(s.ctx, other.ID)
	s.Equal(models.StatusUnread, untouched.Status)

	count, err = s.store.MarkAllRead(s.ctx, s.vendorID, readAt)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *NotificationStoreSuite) TestActions() {
	past := s.now.Add(-time.Hour)
	future := s.now.Add(time.Hour)
	overdue := s.add(s.vendorID, models.Draft{ActionRequired: true, ActionDeadline: &past}, s.now)
	upcoming := s.add(s.vendorID, models.Draft{ActionRequired: true, ActionDeadline: &future}, s.now)
	open := s.add(s.vendorID, models.Draft{ActionRequired: true}, s.now)
	done := s.add(s.vendorID, models.Draft{ActionRequired: true, ActionDeadline: &past}, s.now)
	s.add(s.vendorID, models.Draft{}, s.now)

	_, err := s.store.Execute(s.ctx, done.ID, func(n *models.Notification) error { return n.ApplyActionCompleted(s.now) })
	s.Require().NoError(err)

	pending, err := s.store.ListPendingActions(s.ctx, s.vendorID)
	s.Require().NoError(err)
	s.Require().Len(pending, 3)
	s.Equal(overdue.ID, pending[0].ID)
	s.Equal(upcoming.ID, pending[1].ID)
	s.Equal(open.ID, pending[2].ID)

	late, err := s.store.ListOverdueActions(s.ctx, s.vendorID, s.now)
	s.Require().NoError(err)
	s.Require().Len(late, 1)
	s.Equal(overdue.ID, late[0].ID)
}

func (s *NotificationStoreSuite) TestExecuteAndDelete() {
	n := s.add(s.vendorID, models.Draft{}, s.now)

	_, err := s.store.Execute(s.ctx, n.ID, func(n *models.Notification) error {
		n.ActionCompleted = true
		return nil
	})
	s.Error(err, "invariant violation must not be stored")
	got, _ := s.store.FindByID(s.ctx, n.ID)
	s.False(got.ActionCompleted)

	s.Require().NoError(s.store.Delete(s.ctx, n.ID))
	_, err = s.store.FindByID(s.ctx, n.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, n.ID), sentinel.ErrNotFound)
}

func (s *NotificationStoreSuite) TestStats() {
	s.add(s.vendorID, models.Draft{Type: "DOCUMENT", Priority: models.PriorityUrgent}, s.now)
	s.add(s.vendorID, models.Draft{Type: "DOCUMENT", ActionRequired: true}, s.now)
	read := s.add(s.vendorID, models.Draft{Type: "REVIEW", Priority: models.PriorityUrgent}, s.now)
	gone := s.add(s.vendorID, models.Draft{Type: "REVIEW"}, s.now)

	_, err := s.store.Execute(s.ctx, read.ID, func(n *models.Notification) error { return n.ApplyRead(s.now) })
	s.Require().NoError(err)
	_, err = s.store.Execute(s.ctx, gone.ID, func(n *models.Notification) error {
		n.ApplyDismiss(s.now)
		return nil
	})
	s.Require().NoError(err)

	stats, err := s.store.Stats(s.ctx, s.vendorID)
	s.Require().NoError(err)
	s.Equal(3, stats.Total)
	s.Equal(2, stats.Unread)
	s.Equal(1, stats.UrgentUnread)
	s.Equal(1, stats.PendingActions)
	s.Equal(map[string]int{"DOCUMENT": 2, "REVIEW": 1}, stats.TypeDistribution)
}
