package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vendorhub/internal/document/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/sentinel"
)

type DocumentStoreSuite struct {
	suite.Suite
	store    *InMemory
	ctx      context.Context
	now      time.Time
	vendorID id.VendorID
}

func TestDocumentStoreSuite(t *testing.T) {
	suite.Run(t, new(DocumentStoreSuite))
}

func (s *DocumentStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.vendorID = id.VendorID(uuid.New())
}

func (s *DocumentStoreSuite) add(vendorID id.VendorID, docType string, created time.Time, expiry *time.Time) *models.Document {
	d, err := models.NewDocument(id.DocumentID(uuid.New()), vendorID, models.Upload{
		DocumentType: docType,
		DocumentName: docType + ".pdf",
		ExpiryDate:   expiry,
	}, uuid.NewString(), 10, created)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, d))
	return d
}

func at(t time.Time) *time.Time { return &t }

func (s *DocumentStoreSuite) TestCreateFindDelete() {
	d := s.add(s.vendorID, "license", s.now, nil)

	s.ErrorIs(s.store.Create(s.ctx, d), sentinel.ErrAlreadyUsed)

	found, err := s.store.FindByID(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(d.BlobRef, found.BlobRef)

	found.DocumentName = "mutated"
	again, err := s.store.FindByID(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Equal("license.pdf", again.DocumentName)

	s.Require().NoError(s.store.Delete(s.ctx, d.ID))
	s.ErrorIs(s.store.Delete(s.ctx, d.ID), sentinel.ErrNotFound)
	_, err = s.store.FindByID(s.ctx, d.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *DocumentStoreSuite) TestListByVendor() {
	older := s.add(s.vendorID, "license", s.now, nil)
	newer := s.add(s.vendorID, "permit", s.now.Add(time.Hour), nil)
	s.add(id.VendorID(uuid.New()), "license", s.now, nil)

	s.Run("newest first", func() {
		docs, err := s.store.ListByVendor(s.ctx, s.vendorID, "")
		s.Require().NoError(err)
		s.Require().Len(docs, 2)
		s.Equal(newer.ID, docs[0].ID)
		s.Equal(older.ID, docs[1].ID)
	})

	s.Run("type filter ignores case", func() {
		docs, err := s.store.ListByVendor(s.ctx, s.vendorID, "LICENSE")
		s.Require().NoError(err)
		s.Require().Len(docs, 1)
		s.Equal(older.ID, docs[0].ID)
	})

	s.Run("unknown vendor is empty, not nil", func() {
		docs, err := s.store.ListByVendor(s.ctx, id.VendorID(uuid.New()), "")
		s.Require().NoError(err)
		s.NotNil(docs)
		s.Empty(docs)
	})
}

func (s *DocumentStoreSuite) TestExpiryWindows() {
	lapsed := s.add(s.vendorID, "a", s.now, at(s.now.Add(-time.Hour)))
	edge := s.add(s.vendorID, "b", s.now, at(s.now.AddDate(0, 0, 30)))
	soon := s.add(s.vendorID, "c", s.now, at(s.now.AddDate(0, 0, 5)))
	s.add(s.vendorID, "d", s.now, at(s.now.AddDate(0, 0, 31)))
	s.add(s.vendorID, "e", s.now, nil)

	expiring, err := s.store.ListExpiringBetween(s.ctx, s.now, s.now.AddDate(0, 0, 30))
	s.Require().NoError(err)
	s.Require().Len(expiring, 2)
	s.Equal(soon.ID, expiring[0].ID)
	s.Equal(edge.ID, expiring[1].ID)

	expired, err := s.store.ListExpiredBefore(s.ctx, s.now)
	s.Require().NoError(err)
	s.Require().Len(expired, 1)
	s.Equal(lapsed.ID, expired[0].ID)
}

func (s *DocumentStoreSuite) TestExecuteAndCounts() {
	d := s.add(s.vendorID, "license", s.now, nil)
	s.add(s.vendorID, "permit", s.now, nil)
	rejected := s.add(s.vendorID, "tax", s.now, nil)

	updated, err := s.store.Execute(s.ctx, d.ID,
		func(*models.Document) error { return nil },
		func(d *models.Document) { d.ApplyVerify("agent1", "", s.now) },
	)
	s.Require().NoError(err)
	s.Equal(models.Verified, updated.VerificationStatus)

	_, err = s.store.Execute(s.ctx, rejected.ID,
		func(*models.Document) error { return nil },
		func(d *models.Document) { d.ApplyReject("agent1", "expired copy", s.now) },
	)
	s.Require().NoError(err)

	_, err = s.store.Execute(s.ctx, id.DocumentID(uuid.New()),
		func(*models.Document) error { return nil },
		func(*models.Document) {},
	)
	s.ErrorIs(err, sentinel.ErrNotFound)

	n, err := s.store.CountVerified(s.ctx, s.vendorID)
	s.Require().NoError(err)
	s.Equal(1, n)

	vs, err := s.store.VendorStats(s.ctx, s.vendorID)
	s.Require().NoError(err)
	s.Equal(models.VendorStats{Total: 3, Verified: 1, Pending: 1}, *vs)

	qs, err := s.store.VerificationStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.VerificationStats{Pending: 1, Verified: 1, Rejected: 1, Total: 3}, *qs)
}
