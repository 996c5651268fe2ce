// Package metadata is the local key/value store backing the admin CLI's
// credential cache.
package metadata

import (
	"context"
)

// Repository reads and writes single metadata values. Get returns (nil, nil)
// for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
