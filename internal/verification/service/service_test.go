package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"vendorhub/internal/verification/models"
	"vendorhub/internal/verification/service/mocks"
	"vendorhub/internal/verification/store"
	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/events"
	"vendorhub/pkg/requestcontext"
)

type CaseServiceSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	vendorID id.VendorID
	ctrl     *gomock.Controller
	vendors  *mocks.MockVendorLookup
	verifier *mocks.MockVendorVerifier
	store    *store.InMemory
	recorder *events.Recorder
	service  *Service
}

func TestCaseServiceSuite(t *testing.T) {
	suite.Run(t, new(CaseServiceSuite))
}

func (s *CaseServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.now = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.vendorID = id.VendorID(uuid.New())
	s.vendors = mocks.NewMockVendorLookup(s.ctrl)
	s.vendors.EXPECT().EnsureExists(gomock.Any(), s.vendorID).Return(nil).AnyTimes()
	s.verifier = mocks.NewMockVendorVerifier(s.ctrl)
	s.store = store.NewInMemory()
	s.recorder = events.NewRecorder()
	s.service = New(s.store, s.vendors, s.verifier, WithEventSink(s.recorder))
}

func (s *CaseServiceSuite) initiate() *models.Case {
	c, err := s.service.Initiate(s.ctx, s.vendorID, "BUSINESS_LICENSE", "admin")
	s.Require().NoError(err)
	return c
}

func approval(by string) models.Completion {
	score := 90
	return models.Completion{Approved: true, VerifiedBy: by, Score: &score, Notes: "all good"}
}

func (s *CaseServiceSuite) TestInitiate() {
	s.Run("opens a pending medium priority case", func() {
		c := s.initiate()
		s.Equal(models.StatusPending, c.Status)
		s.Equal(models.PriorityMedium, c.Priority)
		s.Equal(s.now, c.InitiatedAt)
		s.Contains(s.recorder.Types(), events.CaseInitiated)
	})

	s.Run("unknown vendor", func() {
		other := id.VendorID(uuid.New())
		s.vendors.EXPECT().EnsureExists(gomock.Any(), other).Return(dErrors.New(dErrors.CodeNotFound, "vendor not found"))
		_, err := s.service.Initiate(s.ctx, other, "TAX", "admin")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("missing type", func() {
		_, err := s.service.Initiate(s.ctx, s.vendorID, " ", "admin")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *CaseServiceSuite) TestAssign() {
	s.Run("moves case to in progress", func() {
		c := s.initiate()
		got, err := s.service.Assign(s.ctx, c.ID, "reviewer1")
		s.Require().NoError(err)
		s.Equal(models.StatusInProgress, got.Status)
		s.Equal("reviewer1", got.AssignedTo)
		s.Equal(s.now, *got.AssignedAt)
	})

	s.Run("reopens a completed case", func() {
		s.verifier.EXPECT().MarkVerified(gomock.Any(), s.vendorID, "admin").Return(nil)
		c := s.initiate()
		_, err := s.service.Complete(s.ctx, c.ID, approval("admin"))
		s.Require().NoError(err)

		got, err := s.service.Assign(s.ctx, c.ID, "reviewer2")
		s.Require().NoError(err)
		s.Equal(models.StatusInProgress, got.Status)
	})

	s.Run("requires assignee", func() {
		c := s.initiate()
		_, err := s.service.Assign(s.ctx, c.ID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown case", func() {
		_, err := s.service.Assign(s.ctx, id.CaseID(uuid.New()), "reviewer1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CaseServiceSuite) TestComplete() {
	s.Run("approval marks the vendor verified", func() {
		c := s.initiate()
		s.verifier.EXPECT().MarkVerified(gomock.Any(), s.vendorID, "admin").Return(nil)

		got, err := s.service.Complete(s.ctx, c.ID, approval("admin"))
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, got.Status)
		s.Equal("admin", got.CompletedBy)
		s.Equal(90, *got.VerificationScore)
		s.Contains(s.recorder.Types(), events.CaseCompleted)
	})

	s.Run("rejection leaves the vendor alone", func() {
		c := s.initiate()
		got, err := s.service.Complete(s.ctx, c.ID, models.Completion{Approved: false, VerifiedBy: "admin", Notes: "forged"})
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, got.Status)
		s.Contains(s.recorder.Types(), events.CaseRejected)
	})

	s.Run("rejected case may be re-decided", func() {
		c := s.initiate()
		_, err := s.service.Complete(s.ctx, c.ID, models.Completion{Approved: false, VerifiedBy: "admin", Notes: "blurry scan"})
		s.Require().NoError(err)

		s.verifier.EXPECT().MarkVerified(gomock.Any(), s.vendorID, "admin").Return(nil)
		got, err := s.service.Complete(s.ctx, c.ID, approval("admin"))
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, got.Status)
	})

	s.Run("completed case conflicts", func() {
		c := s.initiate()
		s.verifier.EXPECT().MarkVerified(gomock.Any(), s.vendorID, "admin").Return(nil)
		_, err := s.service.Complete(s.ctx, c.ID, approval("admin"))
		s.Require().NoError(err)

		_, err = s.service.Complete(s.ctx, c.ID, models.Completion{Approved: false, VerifiedBy: "admin"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("cancelled case conflicts", func() {
		c := s.initiate()
		_, err := s.service.Cancel(s.ctx, c.ID, "admin", "duplicate")
		s.Require().NoError(err)

		_, err = s.service.Complete(s.ctx, c.ID, approval("admin"))
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("score out of range", func() {
		c := s.initiate()
		score := 101
		_, err := s.service.Complete(s.ctx, c.ID, models.Completion{Approved: true, VerifiedBy: "admin", Score: &score})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("vendor sync failure keeps the case completed", func() {
		c := s.initiate()
		s.verifier.EXPECT().MarkVerified(gomock.Any(), s.vendorID, "admin").Return(errors.New("db down"))

		got, err := s.service.Complete(s.ctx, c.ID, approval("admin"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Require().NotNil(got)
		s.Equal(models.StatusCompleted, got.Status)

		stored, err := s.service.Get(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, stored.Status)
	})
}

func (s *CaseServiceSuite) TestResync() {
	s.Run("re-runs vendor verification", func() {
		c := s.initiate()
		s.verifier.EXPECT().MarkVerified(gomock.Any(), s.vendorID, "admin").Return(errors.New("timeout"))
		_, err := s.service.Complete(s.ctx, c.ID, approval("admin"))
		s.Require().Error(err)

		s.verifier.EXPECT().MarkVerified(gomock.Any(), s.vendorID, "admin").Return(nil)
		got, err := s.service.Resync(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, got.Status)
	})

	s.Run("open case conflicts", func() {
		c := s.initiate()
		_, err := s.service.Resync(s.ctx, c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *CaseServiceSuite) TestCancel() {
	s.Run("clears assignee", func() {
		c := s.initiate()
		_, err := s.service.Assign(s.ctx, c.ID, "reviewer1")
		s.Require().NoError(err)

		got, err := s.service.Cancel(s.ctx, c.ID, "admin", "vendor withdrew")
		s.Require().NoError(err)
		s.Equal(models.StatusCancelled, got.Status)
		s.Empty(got.AssignedTo)
		s.Nil(got.AssignedAt)
		s.Equal("vendor withdrew", got.CancellationReason)
	})

	s.Run("cannot cancel twice", func() {
		c := s.initiate()
		_, err := s.service.Cancel(s.ctx, c.ID, "admin", "")
		s.Require().NoError(err)
		_, err = s.service.Cancel(s.ctx, c.ID, "admin", "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("requires actor", func() {
		c := s.initiate()
		_, err := s.service.Cancel(s.ctx, c.ID, "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *CaseServiceSuite) TestScheduleAndQueries() {
	past := s.now.Add(-time.Hour)
	soon := s.now.AddDate(0, 0, 5)
	late := s.now.AddDate(0, 0, 60)

	overdue := s.initiate()
	_, err := s.service.Schedule(s.ctx, overdue.ID, nil, &past)
	s.Require().NoError(err)

	expiring := s.initiate()
	_, err = s.service.Schedule(s.ctx, expiring.ID, &soon, nil)
	s.Require().NoError(err)

	distant := s.initiate()
	_, err = s.service.Schedule(s.ctx, distant.ID, &late, &late)
	s.Require().NoError(err)

	s.Run("schedule needs a date", func() {
		_, err := s.service.Schedule(s.ctx, distant.ID, nil, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("overdue", func() {
		got, err := s.service.ListOverdue(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(overdue.ID, got[0].ID)
	})

	s.Run("expiring within window", func() {
		got, err := s.service.ListExpiring(s.ctx, 30)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(expiring.ID, got[0].ID)
	})

	s.Run("expiring rejects non-positive days", func() {
		_, err := s.service.ListExpiring(s.ctx, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *CaseServiceSuite) TestHighPriority() {
	low := s.initiate()
	urgent := s.initiate()
	high := s.initiate()
	closed := s.initiate()

	_, err := s.service.UpdatePriority(s.ctx, low.ID, models.PriorityLow)
	s.Require().NoError(err)
	_, err = s.service.UpdatePriority(s.ctx, urgent.ID, models.PriorityUrgent)
	s.Require().NoError(err)
	_, err = s.service.UpdatePriority(s.ctx, high.ID, models.PriorityHigh)
	s.Require().NoError(err)
	_, err = s.service.UpdatePriority(s.ctx, closed.ID, models.PriorityUrgent)
	s.Require().NoError(err)
	_, err = s.service.Cancel(s.ctx, closed.ID, "admin", "")
	s.Require().NoError(err)

	got, err := s.service.ListHighPriority(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(urgent.ID, got[0].ID)
	s.Equal(high.ID, got[1].ID)
	s.Equal(low.ID, got[2].ID)

	limited, err := s.service.ListHighPriority(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(limited, 1)
	s.Contains(s.recorder.Types(), events.CasePriorityChanged)
}

func (s *CaseServiceSuite) TestUpdatePriority() {
	s.Run("priority is stored in canonical form", func() {
		c := s.initiate()
		got, err := s.service.UpdatePriority(s.ctx, c.ID, models.Priority("urgent"))
		s.Require().NoError(err)
		s.Equal(models.PriorityUrgent, got.Priority)
	})

	s.Run("unknown priority is rejected", func() {
		c := s.initiate()
		_, err := s.service.UpdatePriority(s.ctx, c.ID, models.Priority("CRITICAL"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		stored, err := s.service.Get(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(c.Priority, stored.Priority)
	})
}

func (s *CaseServiceSuite) TestStats() {
	s.verifier.EXPECT().MarkVerified(gomock.Any(), s.vendorID, "admin").Return(nil).Times(2)

	first := s.initiate()
	second := s.initiate()
	s.initiate()

	score := 80
	_, err := s.service.Complete(s.ctx, first.ID, models.Completion{Approved: true, VerifiedBy: "admin", Score: &score})
	s.Require().NoError(err)
	_, err = s.service.Complete(s.ctx, second.ID, approval("admin"))
	s.Require().NoError(err)

	stats, err := s.service.Stats(s.ctx, s.vendorID)
	s.Require().NoError(err)
	s.Equal(2, stats.Completed)
	s.Equal(1, stats.Pending)
	s.InDelta(85.0, stats.AverageScore, 0.001)
	s.Equal(3, stats.TypeDistribution["BUSINESS_LICENSE"])
}
