// Package blob defines the archival object-store surface.
package blob

import "context"

// Store writes immutable archival blobs. Put overwrites any existing object at
// the same path, which keeps re-exports of the same record id idempotent.
type Store interface {
	Put(ctx context.Context, path string, data []byte) error
}
