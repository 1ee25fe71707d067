package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"vendorhub/internal/notification/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/sentinel"
)

type InMemory struct {
	mu            sync.RWMutex
	notifications map[id.NotificationID]*models.Notification
}

func NewInMemory() *InMemory {
	return &InMemory{notifications: make(map[id.NotificationID]*models.Notification)}
}

func (s *InMemory) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.notifications[n.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.notifications[n.ID] = n.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[notificationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return n.Clone(), nil
}

// ListByVendor returns matching notifications, newest first.
func (s *InMemory) ListByVendor(_ context.Context, vendorID id.VendorID, filter models.ListFilter) ([]*models.Notification, error) {
	out := s.collect(func(n *models.Notification) bool {
		return n.VendorID == vendorID && filter.Matches(n)
	})
	sortNewestFirst(out)
	return out, nil
}

// ListPendingActions returns outstanding actions, earliest deadline first;
// those without a deadline come last.
func (s *InMemory) ListPendingActions(_ context.Context, vendorID id.VendorID) ([]*models.Notification, error) {
	out := s.collect(func(n *models.Notification) bool {
		return n.VendorID == vendorID && n.IsPendingAction()
	})
	sortByDeadline(out)
	return out, nil
}

func (s *InMemory) ListOverdueActions(_ context.Context, vendorID id.VendorID, now time.Time) ([]*models.Notification, error) {
	out := s.collect(func(n *models.Notification) bool {
		return n.VendorID == vendorID && n.Status != models.StatusDeleted && n.IsActionOverdue(now)
	})
	sortByDeadline(out)
	return out, nil
}

func (s *InMemory) Execute(_ context.Context, notificationID id.NotificationID, mutate func(*models.Notification) error) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.notifications[notificationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	if err := working.CheckInvariants(); err != nil {
		return nil, err
	}
	s.notifications[notificationID] = working
	return working.Clone(), nil
}

// MarkAllRead moves every UNREAD notification of the vendor to READ with the
// same read time and reports how many changed.
func (s *InMemory) MarkAllRead(_ context.Context, vendorID id.VendorID, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, notif := range s.notifications {
		if notif.VendorID != vendorID || notif.Status != models.StatusUnread {
			continue
		}
		if err := notif.ApplyRead(now); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *InMemory) Delete(_ context.Context, notificationID id.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[notificationID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.notifications, notificationID)
	return nil
}

func (s *InMemory) Stats(_ context.Context, vendorID id.VendorID) (*models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &models.Stats{TypeDistribution: map[string]int{}}
	for _, n := range s.notifications {
		if n.VendorID != vendorID || n.Status == models.StatusDeleted {
			continue
		}
		stats.Total++
		stats.TypeDistribution[n.Type]++
		if n.Status == models.StatusUnread {
			stats.Unread++
			if n.Priority == models.PriorityUrgent {
				stats.UrgentUnread++
			}
		}
		if n.IsPendingAction() {
			stats.PendingActions++
		}
	}
	return stats, nil
}

func (s *InMemory) collect(keep func(*models.Notification) bool) []*models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Notification{}
	for _, n := range s.notifications {
		if keep(n) {
			out = append(out, n.Clone())
		}
	}
	return out
}

func sortNewestFirst(out []*models.Notification) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
}

func sortByDeadline(out []*models.Notification) {
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].ActionDeadline, out[j].ActionDeadline
		switch {
		case di == nil && dj == nil:
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		case di == nil:
			return false
		case dj == nil:
			return true
		}
		return di.Before(*dj)
	})
}
