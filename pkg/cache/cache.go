// Package cache provides content-addressed caching for analysis results.
//
// The cache stores serialized snapshots and rendered artifacts keyed by the
// inputs that determine them: the project location, the layout constants,
// and the render options. Backends:
//
//   - FileCache: directory of JSON entries, for CLI usage
//   - RedisCache: shared cache for server deployments
//   - NullCache: disables caching
//
// Keys are generated by a [Keyer] so CLI and server agree on the scheme.
package cache

import (
	"context"
	"fmt"
	"time"
)

// TTLs for the different entry types.
const (
	// TTLSnapshot is how long analysis snapshots stay valid. Source trees
	// change often, so this is short.
	TTLSnapshot = 15 * time.Minute

	// TTLRender is how long rendered artifacts stay valid. They are pure
	// functions of a snapshot, so they live longer.
	TTLRender = 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The second return reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// SnapshotKeyOpts are the inputs that determine an analysis snapshot.
type SnapshotKeyOpts struct {
	CodeFileEndings []string
	LanguageID      string
	Width           float64
	Height          float64
	Padding         float64
	FontSize        float64
	MinWidth        float64
	MinHeight       float64
}

// RenderKeyOpts are the inputs that determine a rendered artifact.
type RenderKeyOpts struct {
	Format string
	Scope  string
}

// Keyer generates cache keys. Implementations must be deterministic.
type Keyer interface {
	// SnapshotKey generates a key for an analysis snapshot.
	SnapshotKey(projectPath string, opts SnapshotKeyOpts) string

	// RenderKey generates a key for a rendered artifact derived from the
	// snapshot with the given content hash.
	RenderKey(snapshotHash string, opts RenderKeyOpts) string
}

// DefaultKeyer is the standard key scheme: a type prefix plus a SHA-256
// hash of the inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// SnapshotKey generates a key for an analysis snapshot.
func (k *DefaultKeyer) SnapshotKey(projectPath string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", projectPath, opts)
}

// RenderKey generates a key for a rendered artifact.
func (k *DefaultKeyer) RenderKey(snapshotHash string, opts RenderKeyOpts) string {
	return hashKey(fmt.Sprintf("render:%s", opts.Format), snapshotHash, opts)
}
