package models

import (
	"math"
	"strings"
	"time"

	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/validation"
)

// Status is the vendor lifecycle state.
//
// The nominal path is PENDING → UNDER_REVIEW → APPROVED → ACTIVE with
// SUSPENDED, INACTIVE, REJECTED and BLACKLISTED as side branches. Only two
// transitions carry rules: MarkVerified promotes APPROVED to ACTIVE, and
// soft deletion moves to INACTIVE. Manual status changes are an unrestricted
// overwrite; the set of values is closed, the graph between them is not.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusActive      Status = "ACTIVE"
	StatusSuspended   Status = "SUSPENDED"
	StatusInactive    Status = "INACTIVE"
	StatusRejected    Status = "REJECTED"
	StatusBlacklisted Status = "BLACKLISTED"
)

var AllStatuses = []Status{
	StatusPending, StatusUnderReview, StatusApproved, StatusActive,
	StatusSuspended, StatusInactive, StatusRejected, StatusBlacklisted,
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range AllStatuses {
		if s == known {
			return s, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown vendor status: "+raw)
}

type Address struct {
	Street     string `json:"street,omitempty" validate:"max=255"`
	City       string `json:"city,omitempty" validate:"max=100"`
	State      string `json:"state,omitempty" validate:"max=100"`
	Country    string `json:"country,omitempty" validate:"max=100"`
	PostalCode string `json:"postal_code,omitempty" validate:"max=20"`
}

// Profile is the vendor-supplied part of the record.
type Profile struct {
	Name                string  `json:"name" validate:"required,max=100"`
	ContactEmail        string  `json:"contact_email" validate:"required,max=100,email"`
	Phone               string  `json:"phone,omitempty" validate:"max=20"`
	Website             string  `json:"website,omitempty" validate:"omitempty,max=255,url"`
	Address             Address `json:"address"`
	BusinessDescription string  `json:"business_description,omitempty" validate:"max=1000"`
	BusinessCategory    string  `json:"business_category,omitempty" validate:"max=50"`
	LicenseNumber       string  `json:"license_number,omitempty" validate:"max=100"`
	TaxID               string  `json:"tax_id,omitempty" validate:"max=50"`
	FacebookURL         string  `json:"facebook_url,omitempty" validate:"omitempty,max=255,url"`
	InstagramURL        string  `json:"instagram_url,omitempty" validate:"omitempty,max=255,url"`
	TwitterURL          string  `json:"twitter_url,omitempty" validate:"omitempty,max=255,url"`
}

// Normalize trims whitespace and lowercases the contact email, which is the
// uniqueness key.
func (p *Profile) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.ContactEmail = strings.ToLower(strings.TrimSpace(p.ContactEmail))
	p.Phone = strings.TrimSpace(p.Phone)
	p.Website = strings.TrimSpace(p.Website)
	p.BusinessCategory = strings.TrimSpace(p.BusinessCategory)
	p.LicenseNumber = strings.TrimSpace(p.LicenseNumber)
	p.TaxID = strings.TrimSpace(p.TaxID)
}

func (p Profile) Validate() error {
	return validation.Struct(p)
}

// Vendor is the aggregate root of the onboarding workflow.
//
// Invariants:
//   - IsVerified implies VerifiedAt and VerifiedBy are set
//   - AverageRating is in [0, 5] with two decimal places
//   - never hard-deleted; deletion is Status=INACTIVE
type Vendor struct {
	ID id.VendorID `json:"id"`
	Profile
	Status        Status     `json:"status"`
	IsVerified    bool       `json:"is_verified"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	VerifiedBy    string     `json:"verified_by,omitempty"`
	AverageRating float64    `json:"average_rating"`
	TotalReviews  int        `json:"total_reviews"`
	TotalSales    int        `json:"total_sales"`
	TotalRevenue  float64    `json:"total_revenue"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewVendor builds a PENDING, unverified vendor with zeroed metrics.
func NewVendor(vendorID id.VendorID, profile Profile, now time.Time) (*Vendor, error) {
	profile.Normalize()
	if err := profile.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "invalid vendor profile")
	}
	return &Vendor{
		ID:        vendorID,
		Profile:   profile,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanSell is the marketplace gate: active and verified.
func (v *Vendor) CanSell() bool {
	return v.Status == StatusActive && v.IsVerified
}

// ApplyVerification records a verification. An APPROVED vendor is promoted to
// ACTIVE; any other status is left alone. Re-applying refreshes the stamp.
func (v *Vendor) ApplyVerification(verifiedBy string, now time.Time) {
	v.IsVerified = true
	v.VerifiedAt = &now
	v.VerifiedBy = verifiedBy
	if v.Status == StatusApproved {
		v.Status = StatusActive
	}
	v.UpdatedAt = now
}

func (v *Vendor) ApplyStatus(status Status, now time.Time) {
	v.Status = status
	v.UpdatedAt = now
}

func (v *Vendor) ApplyProfile(profile Profile, now time.Time) {
	v.Profile = profile
	v.UpdatedAt = now
}

// ApplyRatings writes aggregated review metrics.
func (v *Vendor) ApplyRatings(average float64, total int, now time.Time) {
	v.AverageRating = average
	v.TotalReviews = total
	v.UpdatedAt = now
}

// MeanRating averages sum over count and rounds half away from zero to two
// decimals. Zero reviews yield 0.
func MeanRating(sum float64, count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Round(sum/float64(count)*100) / 100
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (v *Vendor) Clone() *Vendor {
	if v == nil {
		return nil
	}
	out := *v
	if v.VerifiedAt != nil {
		t := *v.VerifiedAt
		out.VerifiedAt = &t
	}
	return &out
}
