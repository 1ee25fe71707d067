package models

import (
	"math"
	"strings"
	"time"

	id "vendorhub/pkg/domain"
	dErrors "vendorhub/pkg/domain-errors"
	"vendorhub/pkg/platform/validation"
)

// Status is the moderation state. Reviews start PENDING and never return to it.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusFlagged  Status = "FLAGGED"
	StatusHidden   Status = "HIDDEN"
)

var AllStatuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusFlagged, StatusHidden}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range AllStatuses {
		if s == known {
			return s, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown review status: "+raw)
}

type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentNegative Sentiment = "NEGATIVE"
)

func ParseSentiment(raw string) (Sentiment, error) {
	switch s := Sentiment(strings.ToUpper(strings.TrimSpace(raw))); s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return s, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown sentiment: "+raw)
}

// SentimentOf classifies a rating: above 3 is positive, below 3 negative.
func SentimentOf(rating float64) Sentiment {
	switch {
	case rating > 3.0:
		return SentimentPositive
	case rating < 3.0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// RoundRating rounds half away from zero to one decimal place.
func RoundRating(rating float64) float64 {
	return math.Round(rating*10) / 10
}

// Submission is the customer-supplied part of a review.
type Submission struct {
	CustomerName     string  `json:"customer_name" validate:"required,max=100"`
	CustomerEmail    string  `json:"customer_email" validate:"required,max=100,email"`
	Rating           float64 `json:"rating" validate:"gte=1,lte=5"`
	Title            string  `json:"title,omitempty" validate:"max=200"`
	Comment          string  `json:"comment,omitempty" validate:"max=2000"`
	VerifiedPurchase bool    `json:"verified_purchase"`
	OrderID          string  `json:"order_id,omitempty" validate:"max=100"`
	ProductID        string  `json:"product_id,omitempty" validate:"max=100"`
}

// Normalize trims text fields, rounds the rating to the one decimal place the
// rating column keeps and lowercases the email, which together with the
// vendor forms the one-approved-review key.
func (s *Submission) Normalize() {
	s.Rating = RoundRating(s.Rating)
	s.CustomerName = strings.TrimSpace(s.CustomerName)
	s.CustomerEmail = strings.ToLower(strings.TrimSpace(s.CustomerEmail))
	s.Title = strings.TrimSpace(s.Title)
	s.Comment = strings.TrimSpace(s.Comment)
	s.OrderID = strings.TrimSpace(s.OrderID)
	s.ProductID = strings.TrimSpace(s.ProductID)
}

func (s Submission) Validate() error {
	return validation.Struct(s)
}

type Review struct {
	ID       id.ReviewID `json:"id"`
	VendorID id.VendorID `json:"vendor_id"`
	Submission
	Sentiment        Sentiment  `json:"sentiment"`
	Status           Status     `json:"status"`
	HelpfulCount     int        `json:"helpful_count"`
	NotHelpfulCount  int        `json:"not_helpful_count"`
	VendorResponse   string     `json:"vendor_response,omitempty" validate:"max=1000"`
	VendorResponseAt *time.Time `json:"vendor_response_at,omitempty"`
	ModerationNote   string     `json:"moderation_note,omitempty" validate:"max=500"`
	ModeratedBy      string     `json:"moderated_by,omitempty" validate:"max=100"`
	ModeratedAt      *time.Time `json:"moderated_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func NewReview(reviewID id.ReviewID, vendorID id.VendorID, sub Submission, now time.Time) (*Review, error) {
	if vendorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "vendor_id is required")
	}
	sub.Normalize()
	if err := sub.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "invalid review")
	}
	return &Review{
		ID:         reviewID,
		VendorID:   vendorID,
		Submission: sub,
		Sentiment:  SentimentOf(sub.Rating),
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsModerationTarget reports whether a moderator may move a review into s.
func IsModerationTarget(s Status) bool {
	return s != StatusPending
}

// ApplyModeration moves the review to target and stamps the moderator.
func (r *Review) ApplyModeration(target Status, moderator, note string, now time.Time) {
	r.Status = target
	r.ModeratedBy = moderator
	r.ModerationNote = note
	r.ModeratedAt = &now
	r.UpdatedAt = now
}

func (r *Review) ApplyResponse(text string, now time.Time) {
	r.VendorResponse = text
	r.VendorResponseAt = &now
	r.UpdatedAt = now
}

func (r *Review) ApplyVote(helpful bool, now time.Time) {
	if helpful {
		r.HelpfulCount++
	} else {
		r.NotHelpfulCount++
	}
	r.UpdatedAt = now
}

// EmailKey is the normalized customer email used for the uniqueness rule.
func (r *Review) EmailKey() string {
	return strings.ToLower(r.CustomerEmail)
}

func (r *Review) Clone() *Review {
	if r == nil {
		return nil
	}
	out := *r
	if r.VendorResponseAt != nil {
		t := *r.VendorResponseAt
		out.VendorResponseAt = &t
	}
	if r.ModeratedAt != nil {
		t := *r.ModeratedAt
		out.ModeratedAt = &t
	}
	return &out
}
