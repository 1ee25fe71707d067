package handler

import (
	"strings"

	"vendorhub/internal/vendors/models"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/validation"
)

// ProfileRequest is the body of vendor registration and profile updates.
type ProfileRequest models.Profile

func (r *ProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	p := (*models.Profile)(r)
	p.Normalize()
	return p.Validate()
}

func (r *ProfileRequest) Profile() models.Profile {
	return models.Profile(*r)
}

type StatusRequest struct {
	Status string `json:"status"`

	parsed models.Status
}

func (r *StatusRequest) Validate() error {
	if r == nil || strings.TrimSpace(r.Status) == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	st, err := models.ParseStatus(r.Status)
	if err != nil {
		return err
	}
	r.parsed = st
	return nil
}

type VerifyRequest struct {
	VerifiedBy string `json:"verified_by" validate:"required,max=100"`
}

func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.VerifiedBy = strings.TrimSpace(r.VerifiedBy)
	return validation.Struct(r)
}
