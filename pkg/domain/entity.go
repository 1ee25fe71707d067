package domain

import (
	"strings"

	dErrors "vendorhub/pkg/domain-errors"
)

// EntityKind names the aggregates that events and notifications can point at.
type EntityKind string

const (
	EntityVendor           EntityKind = "VENDOR"
	EntityDocument         EntityKind = "DOCUMENT"
	EntityReview           EntityKind = "REVIEW"
	EntityVerificationCase EntityKind = "VERIFICATION_CASE"
	EntityNotification     EntityKind = "NOTIFICATION"
)

func ParseEntityKind(raw string) (EntityKind, error) {
	kind := EntityKind(strings.ToUpper(strings.TrimSpace(raw)))
	switch kind {
	case EntityVendor, EntityDocument, EntityReview, EntityVerificationCase, EntityNotification:
		return kind, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown related entity type: "+raw)
}
