// Package cache stores computed layouts and exported images.
//
// A [Cache] is a plain byte store with per-entry expiry. [FileCache] backs
// the CLI, [RedisCache] lets several preview servers share results, and
// [NullCache] disables caching. Keys come from a [Keyer] so that every
// backend sees the same key layout:
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.NewDefaultKeyer().LayoutKey(sceneHash, cache.LayoutKeyOpts{
//	    Algorithm: "fruchterman-reingold",
//	    Width:     800,
//	    Height:    600,
//	})
//	if data, hit, err := c.Get(ctx, key); err == nil && hit {
//	    // use data
//	}
package cache

import (
	"context"
	"time"
)

// Default lifetimes of cached entries.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte store with expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero keeps the entry until it is
	// deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// LayoutKeyOpts are the inputs besides the scene that change a layout.
type LayoutKeyOpts struct {
	Algorithm   string  `json:"algorithm"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	LayoutScale float64 `json:"layout_scale"`
	Margin      float64 `json:"margin"`
	Sorting     bool    `json:"sorting"`
	Seed        uint64  `json:"seed"`
	Iterations  int     `json:"iterations"`
}

// ArtifactKeyOpts are the inputs besides the positions that change an
// exported image.
type ArtifactKeyOpts struct {
	Format string     `json:"format"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Zoom   float64    `json:"zoom"`
	Pan    [2]float64 `json:"pan"`
	Style  string     `json:"style"`
}

// Keyer derives cache keys.
type Keyer interface {
	LayoutKey(sceneHash string, opts LayoutKeyOpts) string
	ArtifactKey(positionsHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the options into "layout:" and "artifact:" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns the key of the positions computed for a scene.
func (DefaultKeyer) LayoutKey(sceneHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", sceneHash, opts)
}

// ArtifactKey returns the key of an image exported from a set of positions.
func (DefaultKeyer) ArtifactKey(positionsHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", positionsHash, opts)
}
