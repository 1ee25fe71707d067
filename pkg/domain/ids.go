// Package domain holds the typed identifiers shared by every vendorhub module.
//
// Each aggregate gets its own UUID-backed type so a document ID can never be
// passed where a vendor ID is expected. Parse functions are the trust boundary:
// they reject empty, malformed and nil UUIDs with CodeInvalidInput.
package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	dErrors "vendorhub/pkg/domain-errors"
)

type (
	VendorID       uuid.UUID
	DocumentID     uuid.UUID
	ReviewID       uuid.UUID
	CaseID         uuid.UUID
	NotificationID uuid.UUID
)

func parseUUID(kind, raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s is required", kind))
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid %s", kind))
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s cannot be nil", kind))
	}
	return parsed, nil
}

func ParseVendorID(raw string) (VendorID, error) {
	u, err := parseUUID("vendor id", raw)
	return VendorID(u), err
}

func ParseDocumentID(raw string) (DocumentID, error) {
	u, err := parseUUID("document id", raw)
	return DocumentID(u), err
}

func ParseReviewID(raw string) (ReviewID, error) {
	u, err := parseUUID("review id", raw)
	return ReviewID(u), err
}

func ParseCaseID(raw string) (CaseID, error) {
	u, err := parseUUID("verification case id", raw)
	return CaseID(u), err
}

func ParseNotificationID(raw string) (NotificationID, error) {
	u, err := parseUUID("notification id", raw)
	return NotificationID(u), err
}

func (id VendorID) String() string       { return uuid.UUID(id).String() }
func (id DocumentID) String() string     { return uuid.UUID(id).String() }
func (id ReviewID) String() string       { return uuid.UUID(id).String() }
func (id CaseID) String() string         { return uuid.UUID(id).String() }
func (id NotificationID) String() string { return uuid.UUID(id).String() }

func (id VendorID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ReviewID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id CaseID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshalling keeps JSON payloads in canonical UUID form.

func (id VendorID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id DocumentID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id ReviewID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id CaseID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id NotificationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *VendorID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *DocumentID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ReviewID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CaseID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *NotificationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
