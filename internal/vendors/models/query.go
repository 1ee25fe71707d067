package models

import "time"

// ListFilter narrows vendor listings. Zero values mean "any".
type ListFilter struct {
	Statuses  []Status
	Category  string
	Verified  *bool
	MinRating float64
	Query     string
	Limit     int
	Offset    int
}

// Matches applies the filter to one vendor. Memory stores and the cache use
// this; the postgres store expresses the same predicate in SQL.
func (f ListFilter) Matches(v *Vendor) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if v.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Category != "" && !equalFold(v.BusinessCategory, f.Category) {
		return false
	}
	if f.Verified != nil && v.IsVerified != *f.Verified {
		return false
	}
	if f.MinRating > 0 && v.AverageRating < f.MinRating {
		return false
	}
	if f.Query != "" && !containsFold(v.Name, f.Query) {
		return false
	}
	return true
}

// Stats summarises the vendor population.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
	Verified int            `json:"verified"`
}

// VerificationStatus is the derived "fully verified" view of one vendor.
type VerificationStatus struct {
	IsVerified        bool       `json:"is_verified"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
	VerifiedBy        string     `json:"verified_by,omitempty"`
	VerifiedDocuments int        `json:"verified_documents"`
	CompletedCases    int        `json:"completed_cases"`
	FullyVerified     bool       `json:"fully_verified"`
	CanSell           bool       `json:"can_sell"`
}
