package service

import (
	"context"

	id "vendorhub/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports-mocks.go -package=mocks

// VendorLookup confirms a vendor exists before a case is opened for it.
type VendorLookup interface {
	EnsureExists(ctx context.Context, vendorID id.VendorID) error
}

// VendorVerifier marks the vendor verified once an approving case is committed.
// It must be idempotent: Resync calls it again for an already completed case.
type VendorVerifier interface {
	MarkVerified(ctx context.Context, vendorID id.VendorID, verifiedBy string) error
}
