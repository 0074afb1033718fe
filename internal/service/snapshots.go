package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yourusername/aegisquant/internal/features"
	"github.com/yourusername/aegisquant/internal/metrics"
	"github.com/yourusername/aegisquant/internal/regime"
	"github.com/yourusername/aegisquant/internal/snapshot"
)

// cached pairs a decoded artifact with the version it was decoded from.
type cached struct {
	value   interface{}
	version snapshot.Version
}

func cacheKey(symbol string, stage snapshot.Stage) string {
	return string(stage) + "|" + symbol
}

func (s *PipelineService) cacheSet(symbol string, stage snapshot.Stage, value interface{}, version snapshot.Version) {
	s.cache.SetDefault(cacheKey(symbol, stage), cached{value: value, version: version})
}

func (s *PipelineService) cacheGet(symbol string, stage snapshot.Stage) (cached, bool) {
	v, ok := s.cache.Get(cacheKey(symbol, stage))
	if !ok {
		metrics.RecordCacheMiss()
		return cached{}, false
	}
	metrics.RecordCacheHit()
	return v.(cached), true
}

func (s *PipelineService) loadRaw(ctx context.Context, symbol string) (*rawEnvelope, snapshot.Version, error) {
	if hit, ok := s.cacheGet(symbol, snapshot.StageRaw); ok {
		return hit.value.(*rawEnvelope), hit.version, nil
	}

	payload, version, err := s.store.GetLatest(ctx, symbol, snapshot.StageRaw)
	if err != nil {
		return nil, "", err
	}
	envelope := &rawEnvelope{}
	if err := json.Unmarshal(payload, envelope); err != nil {
		return nil, "", fmt.Errorf("decoding raw snapshot: %w", err)
	}
	s.cacheSet(symbol, snapshot.StageRaw, envelope, version)
	return envelope, version, nil
}

func (s *PipelineService) loadFeatures(ctx context.Context, symbol string) (*features.Series, snapshot.Version, error) {
	if hit, ok := s.cacheGet(symbol, snapshot.StageFeatures); ok {
		return hit.value.(*features.Series), hit.version, nil
	}

	payload, version, err := s.store.GetLatest(ctx, symbol, snapshot.StageFeatures)
	if err != nil {
		return nil, "", err
	}
	feats := &features.Series{}
	if err := json.Unmarshal(payload, feats); err != nil {
		return nil, "", fmt.Errorf("decoding features snapshot: %w", err)
	}
	s.cacheSet(symbol, snapshot.StageFeatures, feats, version)
	return feats, version, nil
}

func (s *PipelineService) loadRegime(ctx context.Context, symbol string) (*regime.Series, snapshot.Version, error) {
	if hit, ok := s.cacheGet(symbol, snapshot.StageRegime); ok {
		return hit.value.(*regime.Series), hit.version, nil
	}

	payload, version, err := s.store.GetLatest(ctx, symbol, snapshot.StageRegime)
	if err != nil {
		return nil, "", err
	}
	scores := &regime.Series{}
	if err := json.Unmarshal(payload, scores); err != nil {
		return nil, "", fmt.Errorf("decoding regime snapshot: %w", err)
	}
	s.cacheSet(symbol, snapshot.StageRegime, scores, version)
	return scores, version, nil
}
