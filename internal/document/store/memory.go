package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"vendorhub/internal/document/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/sentinel"
)

type InMemory struct {
	mu        sync.RWMutex
	documents map[id.DocumentID]*models.Document
}

func NewInMemory() *InMemory {
	return &InMemory{documents: make(map[id.DocumentID]*models.Document)}
}

func (s *InMemory) Create(_ context.Context, d *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.documents[d.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.documents[d.ID] = d.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, docID id.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.documents[docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return d.Clone(), nil
}

// ListByVendor returns the vendor's documents, newest first. An empty
// docType matches every type.
func (s *InMemory) ListByVendor(_ context.Context, vendorID id.VendorID, docType string) ([]*models.Document, error) {
	return s.collect(func(d *models.Document) bool {
		return d.VendorID == vendorID && (docType == "" || strings.EqualFold(d.DocumentType, docType))
	}, byCreatedDesc), nil
}

// ListExpiringBetween returns documents whose expiry falls in [from, to], soonest first.
func (s *InMemory) ListExpiringBetween(_ context.Context, from, to time.Time) ([]*models.Document, error) {
	return s.collect(func(d *models.Document) bool {
		return d.ExpiryDate != nil && !d.ExpiryDate.Before(from) && !d.ExpiryDate.After(to)
	}, byExpiryAsc), nil
}

// ListExpiredBefore returns documents whose expiry is strictly before now.
func (s *InMemory) ListExpiredBefore(_ context.Context, now time.Time) ([]*models.Document, error) {
	return s.collect(func(d *models.Document) bool {
		return d.IsExpired(now)
	}, byExpiryAsc), nil
}

func (s *InMemory) Execute(_ context.Context, docID id.DocumentID, validate func(*models.Document) error, mutate func(*models.Document)) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.documents[docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.documents[docID] = working
	return working.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, docID id.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[docID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.documents, docID)
	return nil
}

func (s *InMemory) CountVerified(_ context.Context, vendorID id.VendorID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, d := range s.documents {
		if d.VendorID == vendorID && d.VerificationStatus == models.Verified {
			n++
		}
	}
	return n, nil
}

func (s *InMemory) VendorStats(_ context.Context, vendorID id.VendorID) (*models.VendorStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &models.VendorStats{}
	for _, d := range s.documents {
		if d.VendorID != vendorID {
			continue
		}
		stats.Total++
		if d.VerificationStatus == models.Verified {
			stats.Verified++
		}
		if d.Status == models.StatusPending {
			stats.Pending++
		}
	}
	return stats, nil
}

func (s *InMemory) VerificationStats(_ context.Context) (*models.VerificationStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &models.VerificationStats{}
	for _, d := range s.documents {
		stats.Total++
		switch d.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusApproved:
			stats.Verified++
		case models.StatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

func (s *InMemory) collect(keep func(*models.Document) bool, less func(a, b *models.Document) bool) []*models.Document {
	s.mu.RLock()
	out := []*models.Document{}
	for _, d := range s.documents {
		if keep(d) {
			out = append(out, d.Clone())
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byCreatedDesc(a, b *models.Document) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID.String() < b.ID.String()
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func byExpiryAsc(a, b *models.Document) bool {
	if a.ExpiryDate.Equal(*b.ExpiryDate) {
		return a.ID.String() < b.ID.String()
	}
	return a.ExpiryDate.Before(*b.ExpiryDate)
}
