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

var now = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func newCase(t *testing.T) *Case {
	t.Helper()
	c, err := NewCase(id.CaseID(uuid.New()), id.VendorID(uuid.New()), "BUSINESS_LICENSE", "admin", now)
	require.NoError(t, err)
	return c
}

func TestNewCase(t *testing.T) {
	c := newCase(t)
	assert.Equal(t, StatusPending, c.Status)
	assert.Equal(t, PriorityMedium, c.Priority)
	assert.Equal(t, now, c.InitiatedAt)

	_, err := NewCase(id.CaseID(uuid.New()), id.VendorID(uuid.Nil), "TAX", "admin", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewCase(id.CaseID(uuid.New()), id.VendorID(uuid.New()), "", "admin", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusRejected, StatusCancelled, StatusFailed, StatusExpired} {
		assert.True(t, s.IsTerminal(), string(s))
	}
	for _, s := range []Status{StatusPending, StatusInProgress, StatusOnHold} {
		assert.False(t, s.IsTerminal(), string(s))
	}
}

func TestAcceptsDecision(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusInProgress, StatusOnHold, StatusRejected} {
		assert.True(t, s.AcceptsDecision(), string(s))
	}
	for _, s := range []Status{StatusCompleted, StatusCancelled, StatusFailed, StatusExpired} {
		assert.False(t, s.AcceptsDecision(), string(s))
	}
}

func TestPriority(t *testing.T) {
	p, err := ParsePriority(" high ")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("critical")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	assert.Greater(t, PriorityUrgent.Rank(), PriorityHigh.Rank())
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
}

func TestApplyCompletion(t *testing.T) {
	t.Run("approved", func(t *testing.T) {
		c := newCase(t)
		score := 95
		c.ApplyCompletion(Completion{Approved: true, VerifiedBy: "agent1", Notes: "ok", Score: &score}, now)
		assert.Equal(t, StatusCompleted, c.Status)
		assert.Equal(t, "agent1", c.CompletedBy)
		assert.Equal(t, now, *c.CompletedAt)
		score = 10
		assert.Equal(t, 95, *c.VerificationScore, "score is copied")
	})

	t.Run("rejected", func(t *testing.T) {
		c := newCase(t)
		c.ApplyCompletion(Completion{Approved: false, VerifiedBy: "agent1"}, now)
		assert.Equal(t, StatusRejected, c.Status)
		assert.Nil(t, c.VerificationScore)
	})

	t.Run("score bounds", func(t *testing.T) {
		for _, v := range []int{0, 100} {
			score := v
			assert.NoError(t, Completion{VerifiedBy: "a", Score: &score}.Validate())
		}
		for _, v := range []int{-1, 101} {
			score := v
			assert.True(t, dErrors.HasCode(Completion{VerifiedBy: "a", Score: &score}.Validate(), dErrors.CodeValidation))
		}
	})
}

func TestAssigneeInvariant(t *testing.T) {
	c := newCase(t)
	c.ApplyAssign("agent1", now)
	require.NoError(t, c.CheckInvariants())

	c.ApplyCancel("admin", "duplicate", now)
	assert.Empty(t, c.AssignedTo)
	assert.Nil(t, c.AssignedAt)
	require.NoError(t, c.CheckInvariants())

	c.AssignedTo = "ghost"
	assert.True(t, dErrors.HasCode(c.CheckInvariants(), dErrors.CodeInvariantViolation))

	pending := newCase(t)
	pending.AssignedTo = "agent1"
	assert.Error(t, pending.CheckInvariants())
}

func TestDerivedDates(t *testing.T) {
	c := newCase(t)
	assert.False(t, c.IsOverdue(now))
	assert.False(t, c.IsExpired(now))

	yesterday := now.AddDate(0, 0, -1)
	c.ApplySchedule(&yesterday, &yesterday, now)
	assert.True(t, c.IsOverdue(now))
	assert.True(t, c.IsExpired(now))
	assert.False(t, c.IsOverdue(yesterday), "equal to now is not overdue")

	assert.Equal(t, 3, c.DaysInProgress(now.Add(3*24*time.Hour+time.Hour)))
	done := now.AddDate(0, 0, 2)
	c.CompletedAt = &done
	assert.Equal(t, 2, c.DaysInProgress(now.AddDate(0, 0, 10)))
}

func TestClone(t *testing.T) {
	c := newCase(t)
	score := 50
	c.VerificationScore = &score
	c.ApplySchedule(&now, nil, now)

	cp := c.Clone()
	*cp.VerificationScore = 1
	*cp.ExpiryDate = now.Add(time.Hour)
	assert.Equal(t, 50, *c.VerificationScore)
	assert.Equal(t, now, *c.ExpiryDate)
}
