package handler

import (
	"strings"
	"time"

	"vendorhub/internal/document/models"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/validation"
)

type VerifyRequest struct {
	VerifiedBy string `json:"verified_by" validate:"required,max=100"`
	Notes      string `json:"notes" validate:"max=1000"`
}

func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.VerifiedBy = strings.TrimSpace(r.VerifiedBy)
	return validation.Struct(r)
}

type RejectRequest struct {
	RejectedBy string `json:"rejected_by" validate:"required,max=100"`
	Reason     string `json:"reason" validate:"required,max=1000"`
}

func (r *RejectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.RejectedBy = strings.TrimSpace(r.RejectedBy)
	r.Reason = strings.TrimSpace(r.Reason)
	return validation.Struct(r)
}

type DetailsRequest models.Details

func (r *DetailsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Struct(r)
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
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
