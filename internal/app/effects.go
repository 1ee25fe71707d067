package app

import (
	"context"

	vendorservice "vendorhub/internal/vendors/service"
	id "vendorhub/pkg/domain"
)

// vendorEffects exposes the vendor operations other modules trigger after
// their own commit, with the vendor result dropped.
type vendorEffects struct {
	vendors *vendorservice.Service
}

func (e vendorEffects) RecomputeMetrics(ctx context.Context, vendorID id.VendorID) error {
	_, err := e.vendors.RecomputeMetrics(ctx, vendorID)
	return err
}

func (e vendorEffects) MarkVerified(ctx context.Context, vendorID id.VendorID, verifiedBy string) error {
	_, err := e.vendors.MarkVerified(ctx, vendorID, verifiedBy)
	return err
}
