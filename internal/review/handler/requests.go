package handler

import (
	"strings"

	"vendorhub/internal/review/models"
	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/validation"
)

type SubmitRequest struct {
	VendorID string `json:"vendor_id"`
	models.Submission

	vendorID id.VendorID
}

func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	vendorID, err := id.ParseVendorID(r.VendorID)
	if err != nil {
		return err
	}
	r.vendorID = vendorID
	r.Submission.Normalize()
	return r.Submission.Validate()
}

// ModerationRequest is the body of approve, reject, flag and hide.
type ModerationRequest struct {
	ModeratedBy string `json:"moderated_by" validate:"required,max=100"`
	Reason      string `json:"reason" validate:"max=500"`
}

func (r *ModerationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.ModeratedBy = strings.TrimSpace(r.ModeratedBy)
	r.Reason = strings.TrimSpace(r.Reason)
	return validation.Struct(r)
}

type ResponseRequest struct {
	Response string `json:"response" validate:"required,max=1000"`
}

func (r *ResponseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.Response = strings.TrimSpace(r.Response)
	return validation.Struct(r)
}
