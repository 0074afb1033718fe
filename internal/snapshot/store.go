// Package snapshot provides immutable, versioned storage for pipeline
// stage outputs.
package snapshot

import "context"

// Stage names the pipeline stage an artifact belongs to.
type Stage string

const (
	StageRaw      Stage = "raw"
	StageFeatures Stage = "features"
	StageRegime   Stage = "regime"
)

// Version identifies one immutable artifact. Versions embed a UTC
// timestamp whose lexicographic order is monotonic with write order, so
// "latest" is simply the greatest version.
type Version string

// Store freezes each pipeline stage's output for a symbol as an immutable
// artifact and resolves the most recent one. A missing snapshot is a
// distinct condition (models.ErrSnapshotNotFound) from an empty payload.
type Store interface {
	// Put writes payload as a new immutable artifact and returns its version.
	Put(ctx context.Context, symbol string, stage Stage, payload []byte) (Version, error)

	// GetLatest returns the newest artifact payload for symbol and stage.
	GetLatest(ctx context.Context, symbol string, stage Stage) ([]byte, Version, error)

	// Ping verifies the store is usable (readiness checks).
	Ping(ctx context.Context) error
}
