package handler

import (
	"strings"
	"time"

	"vendorhub/internal/verification/models"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/validation"
)

type InitiateRequest struct {
	VerificationType string `json:"verification_type" validate:"required,max=50"`
	InitiatedBy      string `json:"initiated_by" validate:"required,max=100"`
}

func (r *InitiateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.VerificationType = strings.TrimSpace(r.VerificationType)
	r.InitiatedBy = strings.TrimSpace(r.InitiatedBy)
	return validation.Struct(r)
}

type AssignRequest struct {
	AssignedTo string `json:"assigned_to" validate:"required,max=100"`
}

func (r *AssignRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.AssignedTo = strings.TrimSpace(r.AssignedTo)
	return validation.Struct(r)
}

// CompleteRequest carries the outcome; approved defaults to false.
type CompleteRequest models.Completion

func (r *CompleteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.VerifiedBy = strings.TrimSpace(r.VerifiedBy)
	return models.Completion(*r).Validate()
}

type PriorityRequest struct {
	Priority string `json:"priority"`

	priority models.Priority
}

func (r *PriorityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	p, err := models.ParsePriority(r.Priority)
	if err != nil {
		return err
	}
	r.priority = p
	return nil
}

type ScheduleRequest struct {
	ExpiryDate     string `json:"expiry_date"`
	NextReviewDate string `json:"next_review_date"`

	expiry     *time.Time
	nextReview *time.Time
}

func (r *ScheduleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	var err error
	if r.expiry, err = parseDate("expiry_date", r.ExpiryDate); err != nil {
		return err
	}
	if r.nextReview, err = parseDate("next_review_date", r.NextReviewDate); err != nil {
		return err
	}
	if r.expiry == nil && r.nextReview == nil {
		return dErrors.New(dErrors.CodeValidation, "expiry_date or next_review_date is required")
	}
	return nil
}

type CancelRequest struct {
	CancelledBy string `json:"cancelled_by" validate:"required,max=100"`
	Reason      string `json:"reason" validate:"max=1000"`
}

func (r *CancelRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.CancelledBy = strings.TrimSpace(r.CancelledBy)
	r.Reason = strings.TrimSpace(r.Reason)
	return validation.Struct(r)
}

func parseDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return &t, nil
	}
	return nil, dErrors.New(dErrors.CodeBadRequest, field+" must be an RFC 3339 timestamp or YYYY-MM-DD date")
}
