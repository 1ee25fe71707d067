package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"vendorhub/internal/vendors/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded vendor store. Records are cloned on the way in
// and out so callers never alias stored state.
type InMemory struct {
	mu      sync.RWMutex
	vendors map[id.VendorID]*models.Vendor
	emails  map[string]id.VendorID
}

func NewInMemory() *InMemory {
	return &InMemory{
		vendors: make(map[id.VendorID]*models.Vendor),
		emails:  make(map[string]id.VendorID),
	}
}

// Create inserts a vendor. A contact email already held by another vendor
// returns sentinel.ErrAlreadyUsed.
func (s *InMemory) Create(_ context.Context, v *models.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(v.ContactEmail)
	if _, taken := s.emails[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.vendors[v.ID] = v.Clone()
	s.emails[key] = v.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, vendorID id.VendorID) (*models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vendors[vendorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return v.Clone(), nil
}

// List returns vendors matching filter, newest first.
func (s *InMemory) List(_ context.Context, filter models.ListFilter) ([]*models.Vendor, error) {
	s.mu.RLock()
	matched := make([]*models.Vendor, 0, len(s.vendors))
	for _, v := range s.vendors {
		if filter.Matches(v) {
			matched = append(matched, v.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, filter.Offset, filter.Limit), nil
}

func (s *InMemory) Stats(_ context.Context) (*models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.Stats{ByStatus: make(map[models.Status]int)}
	for _, v := range s.vendors {
		stats.Total++
		stats.ByStatus[v.Status]++
		if v.IsVerified {
			stats.Verified++
		}
	}
	return stats, nil
}

// Execute runs validate and mutate under the write lock. The stored record
// is replaced only when validate passes; the email index follows profile edits.
func (s *InMemory) Execute(_ context.Context, vendorID id.VendorID, validate func(*models.Vendor) error, mutate func(*models.Vendor)) (*models.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.vendors[vendorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)

	oldKey := strings.ToLower(current.ContactEmail)
	newKey := strings.ToLower(working.ContactEmail)
	if oldKey != newKey {
		if owner, taken := s.emails[newKey]; taken && owner != vendorID {
			return nil, sentinel.ErrAlreadyUsed
		}
		delete(s.emails, oldKey)
		s.emails[newKey] = vendorID
	}
	s.vendors[vendorID] = working
	return working.Clone(), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
