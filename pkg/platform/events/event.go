// Package events carries workflow events out of the state machines.
//
// Services emit an Event after each committed transition. Emission is
// best-effort: a failing sink never rolls back the transition that produced
// the event. Sinks are composed with Fanout; the notification tracker is one
// sink and the broker publishers are others.
package events

import (
	"context"
	"errors"
	"time"

	id "vendorhub/pkg/domain"
)

type Type string

const (
	VendorRegistered    Type = "vendor.registered"
	VendorStatusChanged Type = "vendor.status_changed"
	VendorVerified      Type = "vendor.verified"

	DocumentUploaded Type = "document.uploaded"
	DocumentVerified Type = "document.verified"
	DocumentRejected Type = "document.rejected"
	DocumentDeleted  Type = "document.deleted"

	ReviewSubmitted Type = "review.submitted"
	ReviewApproved  Type = "review.approved"
	ReviewRejected  Type = "review.rejected"
	ReviewFlagged   Type = "review.flagged"
	ReviewHidden    Type = "review.hidden"

	CaseInitiated       Type = "verification.initiated"
	CaseAssigned        Type = "verification.assigned"
	CaseCompleted       Type = "verification.completed"
	CaseRejected        Type = "verification.rejected"
	CaseCancelled       Type = "verification.cancelled"
	CasePriorityChanged Type = "verification.priority_changed"
)

// Event describes one committed transition.
type Event struct {
	Type       Type          `json:"type"`
	VendorID   id.VendorID   `json:"vendor_id"`
	EntityKind id.EntityKind `json:"entity_kind"`
	EntityID   string        `json:"entity_id"`
	Actor      string        `json:"actor,omitempty"`
	// Detail is a short human-readable qualifier: new status, reason, priority.
	Detail     string    `json:"detail,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Sink receives events.
type Sink interface {
	Emit(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev Event) error

func (f SinkFunc) Emit(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Fanout delivers to every sink and joins their errors.
type Fanout []Sink

func (f Fanout) Emit(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
