package repository

import "context"

// SiteDataKey is the single key the serialized site document is stored under
const SiteDataKey = "site_data"

// SiteDataRepositoryInterface defines the contract for the local site document store.
// It holds one serialized document; Load reports found=false when nothing was saved yet.
type SiteDataRepositoryInterface interface {
	Load(ctx context.Context) (raw []byte, found bool, err error)
	Save(ctx context.Context, raw []byte) error
}
