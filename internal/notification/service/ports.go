package service

import (
	"context"

	id "vendorhub/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports-mocks.go -package=mocks

// VendorLookup confirms a vendor exists before a notification is recorded for it.
type VendorLookup interface {
	EnsureExists(ctx context.Context, vendorID id.VendorID) error
}
