package models

import (
	"strings"
	"time"

	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/validation"
)

// Status is the verification case state.
//
// PENDING → IN_PROGRESS on assignment, then COMPLETED or REJECTED on
// completion. CANCELLED is reachable from any non-terminal state. FAILED,
// EXPIRED and ON_HOLD are valid stored values that no operation enters.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusRejected   Status = "REJECTED"
	StatusExpired    Status = "EXPIRED"
	StatusCancelled  Status = "CANCELLED"
	StatusOnHold     Status = "ON_HOLD"
)

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusCancelled, StatusFailed, StatusExpired:
		return true
	}
	return false
}

// AcceptsDecision reports whether Complete may decide a case in this state.
// A REJECTED case may be re-decided; other terminal states are final.
func (s Status) AcceptsDecision() bool {
	return s == StatusRejected || !s.IsTerminal()
}

// allowsAssignee lists the states in which a case may carry an assignee.
func (s Status) allowsAssignee() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusFailed, StatusRejected, StatusOnHold:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func ParsePriority(raw string) (Priority, error) {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(raw))); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown priority: "+raw)
}

// Rank orders priorities; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	}
	return 0
}

type Case struct {
	ID                 id.CaseID   `json:"id"`
	VendorID           id.VendorID `json:"vendor_id"`
	VerificationType   string      `json:"verification_type" validate:"required,max=50"`
	Status             Status      `json:"status"`
	Priority           Priority    `json:"priority"`
	InitiatedBy        string      `json:"initiated_by" validate:"required,max=100"`
	InitiatedAt        time.Time   `json:"initiated_at"`
	AssignedTo         string      `json:"assigned_to,omitempty" validate:"max=100"`
	AssignedAt         *time.Time  `json:"assigned_at,omitempty"`
	CompletedBy        string      `json:"completed_by,omitempty" validate:"max=100"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
	VerificationScore  *int        `json:"verification_score,omitempty" validate:"omitempty,gte=0,lte=100"`
	VerificationMethod string      `json:"verification_method,omitempty" validate:"max=100"`
	ExternalReference  string      `json:"external_reference,omitempty" validate:"max=255"`
	Notes              string      `json:"notes,omitempty" validate:"max=2000"`
	CancelledBy        string      `json:"cancelled_by,omitempty" validate:"max=100"`
	CancellationReason string      `json:"cancellation_reason,omitempty" validate:"max=1000"`
	ExpiryDate         *time.Time  `json:"expiry_date,omitempty"`
	NextReviewDate     *time.Time  `json:"next_review_date,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

func NewCase(caseID id.CaseID, vendorID id.VendorID, verificationType, initiatedBy string, now time.Time) (*Case, error) {
	if vendorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "vendor_id is required")
	}
	c := &Case{
		ID:               caseID,
		VendorID:         vendorID,
		VerificationType: strings.TrimSpace(verificationType),
		Status:           StatusPending,
		Priority:         PriorityMedium,
		InitiatedBy:      strings.TrimSpace(initiatedBy),
		InitiatedAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := validation.Struct(c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "invalid verification case")
	}
	return c, nil
}

// ApplyAssign moves the case to IN_PROGRESS whatever its current state,
// which reopens a closed case.
func (c *Case) ApplyAssign(assignee string, now time.Time) {
	c.AssignedTo = assignee
	c.AssignedAt = &now
	c.Status = StatusInProgress
	c.UpdatedAt = now
}

// Completion is the outcome of a verification check.
type Completion struct {
	Approved   bool   `json:"approved"`
	VerifiedBy string `json:"verified_by" validate:"required,max=100"`
	Notes      string `json:"notes" validate:"max=2000"`
	Score      *int   `json:"verification_score" validate:"omitempty,gte=0,lte=100"`
	Method     string `json:"verification_method" validate:"max=100"`
	Reference  string `json:"external_reference" validate:"max=255"`
}

func (c Completion) Validate() error {
	return validation.Struct(c)
}

func (c *Case) ApplyCompletion(done Completion, now time.Time) {
	if done.Approved {
		c.Status = StatusCompleted
	} else {
		c.Status = StatusRejected
	}
	c.CompletedBy = done.VerifiedBy
	c.CompletedAt = &now
	c.Notes = done.Notes
	if done.Score != nil {
		score := *done.Score
		c.VerificationScore = &score
	}
	if done.Method != "" {
		c.VerificationMethod = done.Method
	}
	if done.Reference != "" {
		c.ExternalReference = done.Reference
	}
	c.UpdatedAt = now
}

// ApplyCancel closes the case and drops the assignee.
func (c *Case) ApplyCancel(cancelledBy, reason string, now time.Time) {
	c.Status = StatusCancelled
	c.CancelledBy = cancelledBy
	c.CancellationReason = reason
	c.AssignedTo = ""
	c.AssignedAt = nil
	c.UpdatedAt = now
}

func (c *Case) ApplyPriority(p Priority, now time.Time) {
	c.Priority = p
	c.UpdatedAt = now
}

// ApplySchedule sets the review dates; nil leaves a date unchanged.
func (c *Case) ApplySchedule(expiry, nextReview *time.Time, now time.Time) {
	if expiry != nil {
		t := *expiry
		c.ExpiryDate = &t
	}
	if nextReview != nil {
		t := *nextReview
		c.NextReviewDate = &t
	}
	c.UpdatedAt = now
}

// CheckInvariants reports a case whose assignee is incompatible with its status.
func (c *Case) CheckInvariants() error {
	if c.AssignedTo != "" && !c.Status.allowsAssignee() {
		return dErrors.New(dErrors.CodeInvariantViolation, "case in status "+string(c.Status)+" cannot have an assignee")
	}
	return nil
}

func (c *Case) IsOverdue(now time.Time) bool {
	return c.NextReviewDate != nil && c.NextReviewDate.Before(now)
}

func (c *Case) IsExpired(now time.Time) bool {
	return c.ExpiryDate != nil && c.ExpiryDate.Before(now)
}

// DaysInProgress counts whole days from initiation to completion, or to now
// while the case is open.
func (c *Case) DaysInProgress(now time.Time) int {
	end := now
	if c.CompletedAt != nil {
		end = *c.CompletedAt
	}
	if end.Before(c.InitiatedAt) {
		return 0
	}
	return int(end.Sub(c.InitiatedAt) / (24 * time.Hour))
}

func (c *Case) Clone() *Case {
	if c == nil {
		return nil
	}
	out := *c
	out.AssignedAt = cloneTime(c.AssignedAt)
	out.CompletedAt = cloneTime(c.CompletedAt)
	out.ExpiryDate = cloneTime(c.ExpiryDate)
	out.NextReviewDate = cloneTime(c.NextReviewDate)
	if c.VerificationScore != nil {
		s := *c.VerificationScore
		out.VerificationScore = &s
	}
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Stats summarises one vendor's cases. Pending covers PENDING and
// IN_PROGRESS; the average score covers completed cases that carry one.
type Stats struct {
	Completed        int            `json:"completed"`
	Pending          int            `json:"pending"`
	AverageScore     float64        `json:"average_score"`
	TypeDistribution map[string]int `json:"type_distribution"`
}
