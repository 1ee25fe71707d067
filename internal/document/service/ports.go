package service

import (
	"context"
	"io"

	id "vendorhub/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports-mocks.go -package=mocks

// VendorLookup confirms a vendor exists before a document is attached to it.
type VendorLookup interface {
	EnsureExists(ctx context.Context, vendorID id.VendorID) error
}

// BlobStore holds document payloads behind opaque references.
type BlobStore interface {
	Put(ctx context.Context, data []byte) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
}
