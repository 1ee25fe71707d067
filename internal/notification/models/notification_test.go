package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
)

var now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func newNotification(t *testing.T, d Draft) *Notification {
	t.Helper()
	if d.Type == "" {
		d.Type = "DOCUMENT"
	}
	if d.Title == "" {
		d.Title = "Document rejected"
	}
	if d.Message == "" {
		d.Message = "Please upload a replacement."
	}
	n, err := NewNotification(id.NotificationID(uuid.New()), id.VendorID(uuid.New()), d, now)
	require.NoError(t, err)
	return n
}

func TestNewNotification(t *testing.T) {
	n := newNotification(t, Draft{})
	assert.Equal(t, StatusUnread, n.Status)
	assert.Equal(t, PriorityNormal, n.Priority)
	assert.Nil(t, n.ReadAt)

	_, err := NewNotification(id.NotificationID(uuid.New()), id.VendorID(uuid.New()), Draft{Type: "X", Title: "", Message: "m"}, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewNotification(id.NotificationID(uuid.New()), id.VendorID(uuid.Nil), Draft{Type: "X", Title: "t", Message: "m"}, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestDraftRelatedEntity(t *testing.T) {
	d := Draft{Type: "X", Title: "t", Message: "m", Related: Related{Kind: id.EntityDocument, ID: uuid.NewString()}}
	d.Normalize()
	require.NoError(t, d.Validate())

	d.Related = Related{Kind: "INVOICE", ID: "42"}
	assert.True(t, dErrors.HasCode(d.Validate(), dErrors.CodeValidation))

	d.Related = Related{Kind: id.EntityReview}
	assert.True(t, dErrors.HasCode(d.Validate(), dErrors.CodeValidation))
}

func TestTransitions(t *testing.T) {
	t.Run("read keeps first read time", func(t *testing.T) {
		n := newNotification(t, Draft{})
		require.NoError(t, n.ApplyRead(now))
		later := now.Add(time.Hour)
		require.NoError(t, n.ApplyRead(later))
		assert.Equal(t, StatusRead, n.Status)
		assert.Equal(t, now, *n.ReadAt)
	})

	t.Run("archive from unread and read", func(t *testing.T) {
		n := newNotification(t, Draft{})
		require.NoError(t, n.ApplyArchive(now))
		assert.Equal(t, StatusArchived, n.Status)
		assert.True(t, dErrors.HasCode(n.ApplyRead(now), dErrors.CodeConflict))
	})

	t.Run("dismiss is terminal", func(t *testing.T) {
		n := newNotification(t, Draft{})
		n.ApplyDismiss(now)
		assert.Equal(t, StatusDeleted, n.Status)
		assert.True(t, dErrors.HasCode(n.ApplyArchive(now), dErrors.CodeConflict))
		assert.True(t, dErrors.HasCode(n.ApplyRead(now), dErrors.CodeConflict))
	})
}

func TestActions(t *testing.T) {
	deadline := now.Add(-time.Minute)

	t.Run("complete requires an action", func(t *testing.T) {
		n := newNotification(t, Draft{})
		assert.True(t, dErrors.HasCode(n.ApplyActionCompleted(now), dErrors.CodeValidation))
		assert.False(t, n.ActionCompleted)
	})

	t.Run("overdue until completed", func(t *testing.T) {
		n := newNotification(t, Draft{ActionRequired: true, ActionDeadline: &deadline, Priority: PriorityUrgent})
		assert.True(t, n.IsActionOverdue(now))
		assert.False(t, n.IsActionOverdue(deadline), "deadline equal to now is not overdue")
		assert.True(t, n.RequiresImmediate())

		require.NoError(t, n.ApplyActionCompleted(now))
		assert.False(t, n.IsActionOverdue(now))
		assert.False(t, n.RequiresImmediate())
		require.NoError(t, n.CheckInvariants())
	})

	t.Run("invariant", func(t *testing.T) {
		n := newNotification(t, Draft{})
		n.ActionCompleted = true
		assert.True(t, dErrors.HasCode(n.CheckInvariants(), dErrors.CodeInvariantViolation))
	})
}

func TestListFilter(t *testing.T) {
	n := newNotification(t, Draft{})
	assert.True(t, ListFilter{}.Matches(n))
	n.ApplyDismiss(now)
	assert.False(t, ListFilter{}.Matches(n))
	assert.True(t, ListFilter{Status: StatusDeleted}.Matches(n))
}
