package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yourusername/aegisquant/internal/models"
)

// stampLayout is an ISO-8601-like UTC stamp; lexicographic order matches
// wall-clock write order.
const stampLayout = "20060102T150405Z"

// FSStore is a filesystem-backed Store. Artifacts are written once as
// <SYMBOL>_<stage>_<stamp>.json and never modified.
type FSStore struct {
	dir string
	now func() time.Time
}

// NewFSStore creates a store rooted at dir, creating it if needed.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir: %w", err)
	}
	return &FSStore{dir: dir, now: time.Now}, nil
}

// Put writes payload as a new timestamp-suffixed artifact.
func (s *FSStore) Put(ctx context.Context, symbol string, stage Stage, payload []byte) (Version, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return "", models.ErrInvalidSymbol
	}

	stamp := s.now().UTC().Format(stampLayout)
	name := fmt.Sprintf("%s_%s_%s.json", symbol, stage, stamp)
	path := filepath.Join(s.dir, name)

	// Same-second writes would collide; bump the stamp until it is fresh
	// so an artifact is never overwritten.
	for seq := 1; fileExists(path); seq++ {
		stamp = s.now().UTC().Add(time.Duration(seq) * time.Second).Format(stampLayout)
		name = fmt.Sprintf("%s_%s_%s.json", symbol, stage, stamp)
		path = filepath.Join(s.dir, name)
	}

	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot %s: %w", name, err)
	}
	return Version(stamp), nil
}

// GetLatest resolves the lexicographically newest artifact for the symbol
// and stage. A missing snapshot returns models.ErrSnapshotNotFound; an
// empty-but-present artifact returns its (empty) payload normally.
func (s *FSStore) GetLatest(ctx context.Context, symbol string, stage Stage) ([]byte, Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, "", models.ErrInvalidSymbol
	}

	prefix := fmt.Sprintf("%s_%s_", symbol, stage)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, "", fmt.Errorf("reading snapshot dir: %w", err)
	}

	names := make([]string, 0, 4)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, "", fmt.Errorf("%w: symbol=%s stage=%s", models.ErrSnapshotNotFound, symbol, stage)
	}
	sort.Strings(names)
	latest := names[len(names)-1]

	payload, err := os.ReadFile(filepath.Join(s.dir, latest))
	if err != nil {
		return nil, "", fmt.Errorf("reading snapshot %s: %w", latest, err)
	}
	version := strings.TrimSuffix(strings.TrimPrefix(latest, prefix), ".json")
	return payload, Version(version), nil
}

// Ping verifies the snapshot directory is accessible.
func (s *FSStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := os.Stat(s.dir)
	return err
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
