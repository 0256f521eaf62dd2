// Package cache stores rendered artifacts keyed by their full provenance.
//
// A frame rendered from the same scene, seed, index, and image size is
// byte-identical, so repeated runs over an unchanged configuration can skip
// the render entirely. Backends cover local runs (file), disabled caching
// (null), and shared deployments (redis).
package cache

import (
	"context"
	"time"
)

// Cache is the backend-agnostic artifact store.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// FrameKeyOpts are the inputs that determine a rendered frame's content.
type FrameKeyOpts struct {
	Seed   uint64
	Index  int
	Width  int
	Height int
}

// Keyer generates cache keys. Implementations must be deterministic: equal
// inputs always yield equal keys.
type Keyer interface {
	// SceneKey identifies a loaded scene document.
	SceneKey(source string, data []byte) string

	// FrameKey identifies one rendered frame of a scene.
	FrameKey(sceneHash string, opts FrameKeyOpts) string
}

// DefaultKeyer hashes all key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SceneKey hashes the scene source path together with its content, so an
// edited scene file invalidates all frames derived from it.
func (k *DefaultKeyer) SceneKey(source string, data []byte) string {
	return hashKey("scene", source, Hash(data))
}

// FrameKey hashes the scene identity with every render input.
func (k *DefaultKeyer) FrameKey(sceneHash string, opts FrameKeyOpts) string {
	return hashKey("frame", sceneHash, opts.Seed, opts.Index, opts.Width, opts.Height)
}

var _ Keyer = (*DefaultKeyer)(nil)
