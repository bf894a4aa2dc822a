package service

import "context"

// ObjectStorage is the boundary to the rendered-artifact store (QR images).
// Only release is needed by this core; rendering/upload live behind the same
// boundary in the full product.
type ObjectStorage interface {
	Delete(ctx context.Context, url string) error
}

type noopStorage struct{}

// NewNoopStorage returns an ObjectStorage that discards releases. Used when
// no artifact store is configured.
func NewNoopStorage() ObjectStorage { return noopStorage{} }

func (noopStorage) Delete(context.Context, string) error { return nil }
