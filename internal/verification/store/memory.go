package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"vendorhub/internal/verification/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/sentinel"
)

type InMemory struct {
	mu    sync.RWMutex
	cases map[id.CaseID]*models.Case
}

func NewInMemory() *InMemory {
	return &InMemory{cases: make(map[id.CaseID]*models.Case)}
}

func (s *InMemory) Create(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cases[c.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.cases[c.ID] = c.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, caseID id.CaseID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[caseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

// ListByVendor returns the vendor's cases, most recently initiated first.
func (s *InMemory) ListByVendor(_ context.Context, vendorID id.VendorID) ([]*models.Case, error) {
	out := s.collect(func(c *models.Case) bool { return c.VendorID == vendorID })
	sort.Slice(out, func(i, j int) bool {
		if out[i].InitiatedAt.Equal(out[j].InitiatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].InitiatedAt.After(out[j].InitiatedAt)
	})
	return out, nil
}

// ListOverdue returns cases whose next review date is before now, oldest first.
func (s *InMemory) ListOverdue(_ context.Context, now time.Time) ([]*models.Case, error) {
	out := s.collect(func(c *models.Case) bool { return c.IsOverdue(now) })
	sort.Slice(out, func(i, j int) bool { return out[i].NextReviewDate.Before(*out[j].NextReviewDate) })
	return out, nil
}

// ListExpiringBetween returns cases whose expiry falls in [from, to], soonest first.
func (s *InMemory) ListExpiringBetween(_ context.Context, from, to time.Time) ([]*models.Case, error) {
	out := s.collect(func(c *models.Case) bool {
		return c.ExpiryDate != nil && !c.ExpiryDate.Before(from) && !c.ExpiryDate.After(to)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(*out[j].ExpiryDate) })
	return out, nil
}

// ListHighPriority returns open cases by descending priority, then oldest
// initiation first.
func (s *InMemory) ListHighPriority(_ context.Context, limit int) ([]*models.Case, error) {
	out := s.collect(func(c *models.Case) bool {
		return c.Status == models.StatusPending || c.Status == models.StatusInProgress
	})
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return out[i].InitiatedAt.Before(out[j].InitiatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Execute rejects a mutation that leaves the case violating its invariants.
func (s *InMemory) Execute(_ context.Context, caseID id.CaseID, validate func(*models.Case) error, mutate func(*models.Case)) (*models.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.cases[caseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	if err := working.CheckInvariants(); err != nil {
		return nil, err
	}
	s.cases[caseID] = working
	return working.Clone(), nil
}

func (s *InMemory) CountCompleted(_ context.Context, vendorID id.VendorID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.cases {
		if c.VendorID == vendorID && c.Status == models.StatusCompleted {
			n++
		}
	}
	return n, nil
}

func (s *InMemory) Stats(_ context.Context, vendorID id.VendorID) (*models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &models.Stats{TypeDistribution: map[string]int{}}
	var (
		scoreSum int
		scored   int
	)
	for _, c := range s.cases {
		if c.VendorID != vendorID {
			continue
		}
		stats.TypeDistribution[c.VerificationType]++
		switch c.Status {
		case models.StatusCompleted:
			stats.Completed++
			if c.VerificationScore != nil {
				scoreSum += *c.VerificationScore
				scored++
			}
		case models.StatusPending, models.StatusInProgress:
			stats.Pending++
		}
	}
	if scored > 0 {
		stats.AverageScore = float64(scoreSum) / float64(scored)
	}
	return stats, nil
}

func (s *InMemory) collect(keep func(*models.Case) bool) []*models.Case {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Case{}
	for _, c := range s.cases {
		if keep(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}
