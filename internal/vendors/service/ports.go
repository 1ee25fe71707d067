package service

import (
	"context"

	id "vendorhub/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports-mocks.go -package=mocks

// RatingSource reports the sum and count of APPROVED review ratings.
type RatingSource interface {
	ApprovedTotals(ctx context.Context, vendorID id.VendorID) (sum float64, count int, err error)
}

type DocumentCounter interface {
	CountVerified(ctx context.Context, vendorID id.VendorID) (int, error)
}

type CaseCounter interface {
	CountCompleted(ctx context.Context, vendorID id.VendorID) (int, error)
}
