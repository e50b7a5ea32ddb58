// Package cache stores rendered card rasters and downloaded images.
//
// Rasterizing a card is the slow step of an export, and the same card is
// usually exported many times with the same settings. Entries are keyed by
// a hash of everything that affects the pixels (see [Keyer]), so an edited
// submission or a new background simply misses.
//
// Backends:
//   - [NullCache]: caching disabled
//   - [FileCache]: a directory on local disk
//   - [RedisCache]: shared between server instances
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional TTL.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default TTLs.
const (
	CardTTL  = 7 * 24 * time.Hour
	ImageTTL = 24 * time.Hour
)

// CardKeyOpts are the inputs that change a card's pixels besides the
// submission itself.
type CardKeyOpts struct {
	ContentHash string  `json:"content"`
	Background  string  `json:"background,omitempty"`
	Scale       float64 `json:"scale"`
}

// Keyer builds cache keys.
type Keyer interface {
	// CardKey identifies one rasterized card.
	CardKey(submissionID string, opts CardKeyOpts) string

	// ImageKey identifies a downloaded image by URL.
	ImageKey(url string) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) CardKey(submissionID string, opts CardKeyOpts) string {
	return hashKey("card", submissionID, opts)
}

func (DefaultKeyer) ImageKey(url string) string {
	return hashKey("image", url)
}
