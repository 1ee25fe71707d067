package models

import (
	"strings"
	"time"

	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/validation"
)

// Status is the notification state: UNREAD → READ → ARCHIVED, with DELETED
// terminal and reachable from any state.
type Status string

const (
	StatusUnread   Status = "UNREAD"
	StatusRead     Status = "READ"
	StatusArchived Status = "ARCHIVED"
	StatusDeleted  Status = "DELETED"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusUnread, StatusRead, StatusArchived, StatusDeleted:
		return s, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown notification status: "+raw)
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func ParsePriority(raw string) (Priority, error) {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(raw))); p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown notification priority: "+raw)
}

// Related is a lookup-only back-reference to another aggregate. It is never
// checked for existence and may dangle.
type Related struct {
	Kind id.EntityKind `json:"related_entity_type,omitempty"`
	ID   string        `json:"related_entity_id,omitempty" validate:"max=64"`
}

func (r Related) IsZero() bool { return r.Kind == "" && r.ID == "" }

// Draft is the caller-supplied part of a notification.
type Draft struct {
	Type           string     `json:"notification_type" validate:"required,max=50"`
	Title          string     `json:"title" validate:"required,max=200"`
	Message        string     `json:"message" validate:"required,max=1000"`
	Priority       Priority   `json:"priority"`
	ActionRequired bool       `json:"action_required"`
	ActionURL      string     `json:"action_url" validate:"max=500"`
	ActionDeadline *time.Time `json:"action_deadline"`
	Related        Related    `json:"related"`
}

func (d *Draft) Normalize() {
	d.Type = strings.TrimSpace(d.Type)
	d.Title = strings.TrimSpace(d.Title)
	d.Message = strings.TrimSpace(d.Message)
	d.ActionURL = strings.TrimSpace(d.ActionURL)
	if d.Priority == "" {
		d.Priority = PriorityNormal
	}
}

func (d Draft) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	if _, err := ParsePriority(string(d.Priority)); err != nil {
		return err
	}
	if !d.Related.IsZero() {
		if d.Related.ID == "" {
			return dErrors.New(dErrors.CodeValidation, "related_entity_id is required with related_entity_type")
		}
		if _, err := id.ParseEntityKind(string(d.Related.Kind)); err != nil {
			return dErrors.New(dErrors.CodeValidation, err.Error())
		}
	}
	return nil
}

type Notification struct {
	ID                id.NotificationID `json:"id"`
	VendorID          id.VendorID       `json:"vendor_id"`
	Type              string            `json:"notification_type"`
	Title             string            `json:"title"`
	Message           string            `json:"message"`
	Priority          Priority          `json:"priority"`
	Status            Status            `json:"status"`
	ReadAt            *time.Time        `json:"read_at,omitempty"`
	ActionRequired    bool              `json:"action_required"`
	ActionURL         string            `json:"action_url,omitempty"`
	ActionDeadline    *time.Time        `json:"action_deadline,omitempty"`
	ActionCompleted   bool              `json:"action_completed"`
	ActionCompletedAt *time.Time        `json:"action_completed_at,omitempty"`
	Related           Related           `json:"related"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func NewNotification(notificationID id.NotificationID, vendorID id.VendorID, d Draft, now time.Time) (*Notification, error) {
	if vendorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "vendor_id is required")
	}
	d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "invalid notification")
	}
	n := &Notification{
		ID:             notificationID,
		VendorID:       vendorID,
		Type:           d.Type,
		Title:          d.Title,
		Message:        d.Message,
		Priority:       d.Priority,
		Status:         StatusUnread,
		ActionRequired: d.ActionRequired,
		ActionURL:      d.ActionURL,
		ActionDeadline: cloneTime(d.ActionDeadline),
		Related:        d.Related,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return n, nil
}

// ApplyRead marks an UNREAD notification read. A READ one keeps its first
// read time.
func (n *Notification) ApplyRead(now time.Time) error {
	switch n.Status {
	case StatusUnread:
		n.Status = StatusRead
		n.ReadAt = &now
		n.UpdatedAt = now
		return nil
	case StatusRead:
		return nil
	}
	return dErrors.New(dErrors.CodeConflict, "notification is "+string(n.Status))
}

func (n *Notification) ApplyArchive(now time.Time) error {
	switch n.Status {
	case StatusUnread, StatusRead:
		n.Status = StatusArchived
		n.UpdatedAt = now
		return nil
	case StatusArchived:
		return nil
	}
	return dErrors.New(dErrors.CodeConflict, "notification is "+string(n.Status))
}

func (n *Notification) ApplyDismiss(now time.Time) {
	if n.Status == StatusDeleted {
		return
	}
	n.Status = StatusDeleted
	n.UpdatedAt = now
}

// ApplyActionCompleted fails for notifications that never asked for an action.
func (n *Notification) ApplyActionCompleted(now time.Time) error {
	if !n.ActionRequired {
		return dErrors.New(dErrors.CodeValidation, "notification does not require an action")
	}
	if n.ActionCompleted {
		return nil
	}
	n.ActionCompleted = true
	n.ActionCompletedAt = &now
	n.UpdatedAt = now
	return nil
}

func (n *Notification) CheckInvariants() error {
	if n.ActionCompleted && !n.ActionRequired {
		return dErrors.New(dErrors.CodeInvariantViolation, "action completed on a notification without an action")
	}
	return nil
}

func (n *Notification) IsActionOverdue(now time.Time) bool {
	return n.ActionRequired && !n.ActionCompleted && n.ActionDeadline != nil && n.ActionDeadline.Before(now)
}

func (n *Notification) RequiresImmediate() bool {
	return n.Priority == PriorityUrgent && !n.ActionCompleted
}

// IsPendingAction reports an outstanding action on a notification that has
// not been dismissed.
func (n *Notification) IsPendingAction() bool {
	return n.ActionRequired && !n.ActionCompleted && n.Status != StatusDeleted
}

func (n *Notification) Clone() *Notification {
	if n == nil {
		return nil
	}
	out := *n
	out.ReadAt = cloneTime(n.ReadAt)
	out.ActionDeadline = cloneTime(n.ActionDeadline)
	out.ActionCompletedAt = cloneTime(n.ActionCompletedAt)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
