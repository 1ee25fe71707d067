package service

import (
	"context"

	id "vendorhub/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports-mocks.go -package=mocks

// VendorLookup confirms a vendor exists before a review is attached to it.
type VendorLookup interface {
	EnsureExists(ctx context.Context, vendorID id.VendorID) error
}

// MetricsRecomputer refreshes the vendor's rating aggregates after a change
// that adds or removes an APPROVED review.
type MetricsRecomputer interface {
	RecomputeMetrics(ctx context.Context, vendorID id.VendorID) error
}
