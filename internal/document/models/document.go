package models

import (
	"strings"
	"time"

	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/validation"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusExpired  Status = "EXPIRED"
	StatusReplaced Status = "REPLACED"
)

type VerificationStatus string

const (
	NotVerified         VerificationStatus = "NOT_VERIFIED"
	Verified            VerificationStatus = "VERIFIED"
	VerificationFailed  VerificationStatus = "FAILED"
	VerificationExpired VerificationStatus = "EXPIRED"
)

// Document is a vendor-supplied file awaiting or past review.
//
// Status and VerificationStatus move together: APPROVED pairs with VERIFIED
// and REJECTED with FAILED. Verify and Reject may be repeated; the last call
// wins. Expiry is derived from ExpiryDate at read time, never stored.
type Document struct {
	ID                 id.DocumentID      `json:"id"`
	VendorID           id.VendorID        `json:"vendor_id"`
	DocumentType       string             `json:"document_type" validate:"required,max=50"`
	DocumentName       string             `json:"document_name" validate:"required,max=255"`
	BlobRef            string             `json:"-"`
	FileSize           int64              `json:"file_size" validate:"gte=0"`
	MimeType           string             `json:"mime_type,omitempty" validate:"max=100"`
	Status             Status             `json:"status"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	VerifiedBy         string             `json:"verified_by,omitempty" validate:"max=100"`
	VerifiedAt         *time.Time         `json:"verified_at,omitempty"`
	Notes              string             `json:"notes,omitempty" validate:"max=1000"`
	ExpiryDate         *time.Time         `json:"expiry_date,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Upload carries the metadata of a new document.
type Upload struct {
	DocumentType string     `json:"document_type" validate:"required,max=50"`
	DocumentName string     `json:"document_name" validate:"required,max=255"`
	MimeType     string     `json:"mime_type" validate:"max=100"`
	ExpiryDate   *time.Time `json:"expiry_date"`
}

func (u *Upload) Normalize() {
	u.DocumentType = strings.TrimSpace(u.DocumentType)
	u.DocumentName = strings.TrimSpace(u.DocumentName)
	u.MimeType = strings.TrimSpace(u.MimeType)
}

func (u Upload) Validate() error {
	return validation.Struct(u)
}

func NewDocument(docID id.DocumentID, vendorID id.VendorID, up Upload, blobRef string, size int64, now time.Time) (*Document, error) {
	if vendorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "vendor_id is required")
	}
	if blobRef == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "blob reference is required")
	}
	d := &Document{
		ID:                 docID,
		VendorID:           vendorID,
		DocumentType:       strings.TrimSpace(up.DocumentType),
		DocumentName:       strings.TrimSpace(up.DocumentName),
		BlobRef:            blobRef,
		FileSize:           size,
		MimeType:           strings.TrimSpace(up.MimeType),
		Status:             StatusPending,
		VerificationStatus: NotVerified,
		ExpiryDate:         up.ExpiryDate,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := validation.Struct(d); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "invalid document")
	}
	return d, nil
}

func (d *Document) ApplyVerify(verifiedBy, notes string, now time.Time) {
	d.Status = StatusApproved
	d.VerificationStatus = Verified
	d.VerifiedBy = verifiedBy
	d.VerifiedAt = &now
	d.Notes = notes
	d.UpdatedAt = now
}

func (d *Document) ApplyReject(rejectedBy, reason string, now time.Time) {
	d.Status = StatusRejected
	d.VerificationStatus = VerificationFailed
	d.VerifiedBy = rejectedBy
	d.VerifiedAt = &now
	d.Notes = reason
	d.UpdatedAt = now
}

// Details is a partial update; nil fields are left as they are.
type Details struct {
	DocumentName *string    `json:"document_name,omitempty" validate:"omitempty,max=255"`
	DocumentType *string    `json:"document_type,omitempty" validate:"omitempty,max=50"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	Notes        *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (d *Document) ApplyDetails(details Details, now time.Time) {
	if details.DocumentName != nil {
		d.DocumentName = strings.TrimSpace(*details.DocumentName)
	}
	if details.DocumentType != nil {
		d.DocumentType = strings.TrimSpace(*details.DocumentType)
	}
	if details.ExpiryDate != nil {
		t := *details.ExpiryDate
		d.ExpiryDate = &t
	}
	if details.Notes != nil {
		d.Notes = *details.Notes
	}
	d.UpdatedAt = now
}

// IsExpired ignores Status: an approved document past its expiry date is
// still expired.
func (d *Document) IsExpired(now time.Time) bool {
	return d.ExpiryDate != nil && d.ExpiryDate.Before(now)
}

// ExpiresWithin reports a not-yet-expired document whose expiry falls in
// [now, now+window].
func (d *Document) ExpiresWithin(now time.Time, window time.Duration) bool {
	if d.ExpiryDate == nil || d.ExpiryDate.Before(now) {
		return false
	}
	return !d.ExpiryDate.After(now.Add(window))
}

func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	if d.VerifiedAt != nil {
		t := *d.VerifiedAt
		out.VerifiedAt = &t
	}
	if d.ExpiryDate != nil {
		t := *d.ExpiryDate
		out.ExpiryDate = &t
	}
	return &out
}

// VendorStats counts one vendor's documents.
type VendorStats struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
	Pending  int `json:"pending"`
}

// VerificationStats is the review-queue view across all vendors.
type VerificationStats struct {
	Pending  int `json:"pending"`
	Verified int `json:"verified"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}
