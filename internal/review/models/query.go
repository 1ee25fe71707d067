package models

import "math"

// ListFilter narrows a vendor's reviews. Zero values mean "any".
type ListFilter struct {
	Status    Status
	Sentiment Sentiment
}

func (f ListFilter) Matches(r *Review) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Sentiment != "" && r.Sentiment != f.Sentiment {
		return false
	}
	return true
}

// Stats summarises one vendor's reviews. Average and distribution cover
// APPROVED reviews only; the distribution is keyed by whole stars.
type Stats struct {
	Total                 int         `json:"total"`
	ApprovedCount         int         `json:"approved_count"`
	PendingCount          int         `json:"pending_count"`
	VerifiedPurchaseCount int         `json:"verified_purchase_count"`
	AverageRating         float64     `json:"average_rating"`
	Distribution          map[int]int `json:"distribution"`
}

// StarBucket maps a rating in [1, 5] to its whole-star bucket.
func StarBucket(rating float64) int {
	b := int(rating)
	if b < 1 {
		return 1
	}
	if b > 5 {
		return 5
	}
	return b
}

func NewDistribution() map[int]int {
	return map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
}

// Mean rounds sum/count half away from zero to two decimals; 0 when count is 0.
func Mean(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(sum/float64(count)*100) / 100
}
