package handler

import (
	"strings"
	"time"

	"vendorhub/internal/notification/models"
	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
)

type CreateRequest struct {
	VendorID          string `json:"vendor_id"`
	Type              string `json:"notification_type"`
	Title             string `json:"title"`
	Message           string `json:"message"`
	Priority          string `json:"priority"`
	ActionRequired    bool   `json:"action_required"`
	ActionURL         string `json:"action_url"`
	ActionDeadline    string `json:"action_deadline"`
	RelatedEntityType string `json:"related_entity_type"`
	RelatedEntityID   string `json:"related_entity_id"`

	vendorID id.VendorID
	draft    models.Draft
}

func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	vendorID, err := id.ParseVendorID(r.VendorID)
	if err != nil {
		return err
	}
	r.vendorID = vendorID

	draft := models.Draft{
		Type:           r.Type,
		Title:          r.Title,
		Message:        r.Message,
		ActionRequired: r.ActionRequired,
		ActionURL:      r.ActionURL,
		Related: models.Related{
			Kind: id.EntityKind(strings.ToUpper(strings.TrimSpace(r.RelatedEntityType))),
			ID:   strings.TrimSpace(r.RelatedEntityID),
		},
	}
	if raw := strings.TrimSpace(r.Priority); raw != "" {
		if draft.Priority, err = models.ParsePriority(raw); err != nil {
			return err
		}
	}
	if raw := strings.TrimSpace(r.ActionDeadline); raw != "" {
		deadline, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return dErrors.New(dErrors.CodeBadRequest, "action_deadline must be an RFC 3339 timestamp")
		}
		deadline = deadline.UTC()
		draft.ActionDeadline = &deadline
	}
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return err
	}
	r.draft = draft
	return nil
}
