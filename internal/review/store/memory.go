package store

import (
	"context"
	"sort"
	"sync"

	"vendorhub/internal/review/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/sentinel"
)

// InMemory mirrors the postgres partial unique index: at most one APPROVED
// review per (vendor, customer email).
type InMemory struct {
	mu      sync.RWMutex
	reviews map[id.ReviewID]*models.Review
}

func NewInMemory() *InMemory {
	return &InMemory{reviews: make(map[id.ReviewID]*models.Review)}
}

func (s *InMemory) Create(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reviews[r.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	if r.Status == models.StatusApproved && s.approvedClashLocked(r) {
		return sentinel.ErrAlreadyUsed
	}
	s.reviews[r.ID] = r.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, reviewID id.ReviewID) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[reviewID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

// ListByVendor returns matching reviews, newest first.
func (s *InMemory) ListByVendor(_ context.Context, vendorID id.VendorID, filter models.ListFilter) ([]*models.Review, error) {
	s.mu.RLock()
	out := []*models.Review{}
	for _, r := range s.reviews {
		if r.VendorID == vendorID && filter.Matches(r) {
			out = append(out, r.Clone())
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// HasApproved reports an APPROVED review for the pair other than exclude.
func (s *InMemory) HasApproved(_ context.Context, vendorID id.VendorID, email string, exclude id.ReviewID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	probe := &models.Review{ID: exclude, VendorID: vendorID}
	probe.CustomerEmail = email
	return s.approvedClashLocked(probe), nil
}

func (s *InMemory) Execute(_ context.Context, reviewID id.ReviewID, validate func(*models.Review) error, mutate func(*models.Review)) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.reviews[reviewID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	if working.Status == models.StatusApproved && s.approvedClashLocked(working) {
		return nil, sentinel.ErrAlreadyUsed
	}
	s.reviews[reviewID] = working
	return working.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, reviewID id.ReviewID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[reviewID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.reviews, reviewID)
	return nil
}

// ApprovedTotals returns the sum and count of APPROVED ratings for a vendor.
func (s *InMemory) ApprovedTotals(_ context.Context, vendorID id.VendorID) (float64, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		sum   float64
		count int
	)
	for _, r := range s.reviews {
		if r.VendorID == vendorID && r.Status == models.StatusApproved {
			sum += r.Rating
			count++
		}
	}
	return sum, count, nil
}

func (s *InMemory) Stats(_ context.Context, vendorID id.VendorID) (*models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &models.Stats{Distribution: models.NewDistribution()}
	var sum float64
	for _, r := range s.reviews {
		if r.VendorID != vendorID {
			continue
		}
		stats.Total++
		switch r.Status {
		case models.StatusPending:
			stats.PendingCount++
		case models.StatusApproved:
			stats.ApprovedCount++
			sum += r.Rating
			stats.Distribution[models.StarBucket(r.Rating)]++
			if r.VerifiedPurchase {
				stats.VerifiedPurchaseCount++
			}
		}
	}
	stats.AverageRating = models.Mean(sum, stats.ApprovedCount)
	return stats, nil
}

func (s *InMemory) approvedClashLocked(r *models.Review) bool {
	key := r.EmailKey()
	for _, other := range s.reviews {
		if other.ID != r.ID && other.VendorID == r.VendorID &&
			other.Status == models.StatusApproved && other.EmailKey() == key {
			return true
		}
	}
	return false
}
