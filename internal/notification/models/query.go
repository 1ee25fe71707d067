package models

// ListFilter selects a vendor's notifications. With no status set, DELETED
// notifications are left out.
type ListFilter struct {
	Status Status
}

func (f ListFilter) Matches(n *Notification) bool {
	if f.Status == "" {
		return n.Status != StatusDeleted
	}
	return n.Status == f.Status
}

// Stats counts a vendor's notifications, ignoring DELETED ones.
type Stats struct {
	Total            int            `json:"total"`
	Unread           int            `json:"unread"`
	UrgentUnread     int            `json:"urgent_unread"`
	PendingActions   int            `json:"pending_actions"`
	TypeDistribution map[string]int `json:"type_distribution"`
}
