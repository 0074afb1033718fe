// Package service orchestrates the analytics pipeline: pulling price
// history, deriving features and regime scores, and answering queries
// against the latest snapshots.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/aegisquant/internal/config"
	"github.com/yourusername/aegisquant/internal/datasource"
	"github.com/yourusername/aegisquant/internal/features"
	"github.com/yourusername/aegisquant/internal/logger"
	"github.com/yourusername/aegisquant/internal/metrics"
	"github.com/yourusername/aegisquant/internal/models"
	"github.com/yourusername/aegisquant/internal/regime"
	"github.com/yourusername/aegisquant/internal/repository"
	"github.com/yourusername/aegisquant/internal/snapshot"
)

// PipelineService runs the staged pipeline for symbols and serves reads
// from the latest snapshot of each stage.
type PipelineService struct {
	cfg    config.PipelineConfig
	source datasource.PriceSource
	store  snapshot.Store
	repos  *repository.Repositories
	cache  *gocache.Cache
	log    *logrus.Logger
	plog   *logger.PipelineLogger
}

// NewPipelineService creates the pipeline service. repos may be nil, in
// which case runs are snapshot-only.
func NewPipelineService(
	cfg config.PipelineConfig,
	source datasource.PriceSource,
	store snapshot.Store,
	repos *repository.Repositories,
	log *logrus.Logger,
) *PipelineService {
	ttl := time.Duration(cfg.CacheTTLSecs) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PipelineService{
		cfg:    cfg,
		source: source,
		store:  store,
		repos:  repos,
		cache:  gocache.New(ttl, 2*ttl),
		log:    log,
		plog:   logger.NewPipelineLogger(log),
	}
}

// PullPrices fetches the full daily history for symbol from the configured
// source and freezes it as a new raw snapshot.
func (s *PipelineService) PullPrices(ctx context.Context, symbol string) (*PullResult, error) {
	symbol = snapshot.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, models.ErrInvalidSymbol
	}

	run := models.NewPipelineRun(symbol, string(snapshot.StageRaw))
	s.recordRunStart(ctx, run)
	start := time.Now()

	result, err := s.pullPrices(ctx, symbol, run)
	if err != nil {
		run.Fail(err)
		s.recordRunEnd(ctx, run)
		metrics.RecordStageRun(run.Stage, models.RunStatusFailed, time.Since(start).Seconds())
		s.plog.LogStageFailure(run.ID.String(), symbol, run.Stage, err)
		return nil, err
	}

	run.Complete(result.RowCount, result.SnapshotVersion)
	s.recordRunEnd(ctx, run)
	metrics.RecordStageRun(run.Stage, models.RunStatusCompleted, time.Since(start).Seconds())
	s.plog.LogStageComplete(run.ID.String(), symbol, run.Stage, result.RowCount, result.SnapshotVersion, time.Since(start))
	return result, nil
}

func (s *PipelineService) pullPrices(ctx context.Context, symbol string, run *models.PipelineRun) (*PullResult, error) {
	startDate, err := time.Parse(models.DateLayout, s.cfg.StartDate)
	if err != nil {
		startDate = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	pullStart := time.Now()
	bars, err := s.source.FetchDailyBars(ctx, symbol, startDate)
	if err != nil {
		return nil, fmt.Errorf("fetching daily bars: %w", err)
	}
	metrics.RecordPriceBarsPulled(len(bars), time.Since(pullStart).Seconds())

	sorted := models.SortBarsByDate(bars)
	envelope := &rawEnvelope{Symbol: symbol, Source: s.source.Name(), Bars: sorted}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("encoding raw snapshot: %w", err)
	}
	version, err := s.store.Put(ctx, symbol, snapshot.StageRaw, payload)
	if err != nil {
		return nil, fmt.Errorf("writing raw snapshot: %w", err)
	}
	metrics.RecordSnapshotWrite(string(snapshot.StageRaw))
	s.cacheSet(symbol, snapshot.StageRaw, envelope, version)

	if s.repos != nil {
		if err := s.repos.Price.UpsertBatch(ctx, symbol, sorted); err != nil {
			// Snapshot is the source of truth; DB persistence is best effort
			s.log.WithError(err).WithField("symbol", symbol).Warn("Failed to persist price bars")
		}
	}

	result := &PullResult{
		Symbol:          symbol,
		Source:          s.source.Name(),
		RowCount:        len(sorted),
		SnapshotVersion: string(version),
		RunID:           run.ID.String(),
	}
	if len(sorted) > 0 {
		result.FirstDate = sorted[0].Date.Format(models.DateLayout)
		result.LastDate = sorted[len(sorted)-1].Date.Format(models.DateLayout)
	}
	s.plog.LogDataPull(symbol, s.source.Name(), len(sorted), result.FirstDate, result.LastDate)
	return result, nil
}

// BuildFeatures derives the feature series from the latest raw snapshot
// and freezes it as a new features snapshot. Zero windows use the
// configured defaults.
func (s *PipelineService) BuildFeatures(ctx context.Context, symbol string, volWindow, momWindow int) (*StageResult, error) {
	symbol = snapshot.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, models.ErrInvalidSymbol
	}
	if volWindow == 0 {
		volWindow = s.cfg.Features.VolWindow
	}
	if momWindow == 0 {
		momWindow = s.cfg.Features.MomWindow
	}

	run := models.NewPipelineRun(symbol, string(snapshot.StageFeatures))
	s.recordRunStart(ctx, run)
	start := time.Now()

	result, err := s.buildFeatures(ctx, symbol, volWindow, momWindow, run)
	if err != nil {
		run.Fail(err)
		s.recordRunEnd(ctx, run)
		metrics.RecordStageRun(run.Stage, models.RunStatusFailed, time.Since(start).Seconds())
		s.plog.LogStageFailure(run.ID.String(), symbol, run.Stage, err)
		return nil, err
	}

	run.Complete(result.RowCount, result.SnapshotVersion)
	s.recordRunEnd(ctx, run)
	metrics.RecordStageRun(run.Stage, models.RunStatusCompleted, time.Since(start).Seconds())
	s.plog.LogStageComplete(run.ID.String(), symbol, run.Stage, result.RowCount, result.SnapshotVersion, time.Since(start))
	return result, nil
}

func (s *PipelineService) buildFeatures(ctx context.Context, symbol string, volWindow, momWindow int, run *models.PipelineRun) (*StageResult, error) {
	raw, _, err := s.loadRaw(ctx, symbol)
	if err != nil {
		return nil, err
	}

	feats, err := features.Build(raw.Bars, volWindow, momWindow)
	if err != nil {
		return nil, fmt.Errorf("building features: %w", err)
	}
	feats.Symbol = symbol

	payload, err := json.Marshal(feats)
	if err != nil {
		return nil, fmt.Errorf("encoding features snapshot: %w", err)
	}
	version, err := s.store.Put(ctx, symbol, snapshot.StageFeatures, payload)
	if err != nil {
		return nil, fmt.Errorf("writing features snapshot: %w", err)
	}
	metrics.RecordSnapshotWrite(string(snapshot.StageFeatures))
	s.cacheSet(symbol, snapshot.StageFeatures, feats, version)

	result := &StageResult{
		Symbol:          symbol,
		Stage:           string(snapshot.StageFeatures),
		RowCount:        len(feats.Rows),
		SnapshotVersion: string(version),
		RunID:           run.ID.String(),
	}
	if len(feats.Rows) > 0 {
		result.FirstDate = feats.Rows[0].Date.Format(models.DateLayout)
		result.LastDate = feats.Rows[len(feats.Rows)-1].Date.Format(models.DateLayout)
	}
	return result, nil
}

// RunRegime scores the latest feature snapshot and freezes the result as a
// new regime snapshot. Zero parameters use the configured defaults.
func (s *PipelineService) RunRegime(ctx context.Context, symbol string, zWindow int, steepness float64) (*StageResult, error) {
	symbol = snapshot.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, models.ErrInvalidSymbol
	}
	if zWindow == 0 {
		zWindow = s.cfg.Regime.ZWindow
	}
	if zWindow == 0 {
		zWindow = regime.DefaultZWindow
	}
	if steepness == 0 {
		steepness = s.cfg.Regime.Steepness
	}
	if steepness == 0 {
		steepness = regime.DefaultK
	}

	run := models.NewPipelineRun(symbol, string(snapshot.StageRegime))
	s.recordRunStart(ctx, run)
	start := time.Now()

	result, err := s.runRegime(ctx, symbol, zWindow, steepness, run)
	if err != nil {
		run.Fail(err)
		s.recordRunEnd(ctx, run)
		metrics.RecordStageRun(run.Stage, models.RunStatusFailed, time.Since(start).Seconds())
		s.plog.LogStageFailure(run.ID.String(), symbol, run.Stage, err)
		return nil, err
	}

	run.Complete(result.RowCount, result.SnapshotVersion)
	s.recordRunEnd(ctx, run)
	metrics.RecordStageRun(run.Stage, models.RunStatusCompleted, time.Since(start).Seconds())
	s.plog.LogStageComplete(run.ID.String(), symbol, run.Stage, result.RowCount, result.SnapshotVersion, time.Since(start))
	return result, nil
}

func (s *PipelineService) runRegime(ctx context.Context, symbol string, zWindow int, steepness float64, run *models.PipelineRun) (*StageResult, error) {
	feats, _, err := s.loadFeatures(ctx, symbol)
	if err != nil {
		return nil, err
	}

	scores, err := regime.Build(feats, regime.Options{ZWindow: zWindow, K: steepness})
	if err != nil {
		return nil, fmt.Errorf("scoring regime: %w", err)
	}

	payload, err := json.Marshal(scores)
	if err != nil {
		return nil, fmt.Errorf("encoding regime snapshot: %w", err)
	}
	version, err := s.store.Put(ctx, symbol, snapshot.StageRegime, payload)
	if err != nil {
		return nil, fmt.Errorf("writing regime snapshot: %w", err)
	}
	metrics.RecordSnapshotWrite(string(snapshot.StageRegime))
	s.cacheSet(symbol, snapshot.StageRegime, scores, version)

	last := scores.Rows[len(scores.Rows)-1]
	metrics.UpdateLatestRiskOffProb(symbol, last.RiskOffProb)
	s.plog.LogRegimeSignal(symbol, last.Date.Format(models.DateLayout), last.ZScore, last.RiskOffProb)

	result := &StageResult{
		Symbol:          symbol,
		Stage:           string(snapshot.StageRegime),
		RowCount:        len(scores.Rows),
		SnapshotVersion: string(version),
		RunID:           run.ID.String(),
	}
	result.FirstDate = scores.Rows[0].Date.Format(models.DateLayout)
	result.LastDate = last.Date.Format(models.DateLayout)
	return result, nil
}

// RefreshSymbol runs the full pull, features and regime chain for a symbol.
func (s *PipelineService) RefreshSymbol(ctx context.Context, symbol string) error {
	if _, err := s.PullPrices(ctx, symbol); err != nil {
		return err
	}
	if _, err := s.BuildFeatures(ctx, symbol, 0, 0); err != nil {
		return err
	}
	if _, err := s.RunRegime(ctx, symbol, 0, 0); err != nil {
		return err
	}
	metrics.UpdateLastRefresh(snapshot.NormalizeSymbol(symbol), float64(time.Now().Unix()))
	return nil
}

// Symbols returns the configured symbol universe.
func (s *PipelineService) Symbols() []string {
	out := make([]string, 0, len(s.cfg.Symbols))
	for _, sym := range s.cfg.Symbols {
		out = append(out, snapshot.NormalizeSymbol(sym))
	}
	return out
}

func (s *PipelineService) recordRunStart(ctx context.Context, run *models.PipelineRun) {
	if s.repos == nil {
		return
	}
	if err := s.repos.Run.Create(ctx, run); err != nil {
		s.log.WithError(err).Warn("Failed to record pipeline run start")
	}
}

func (s *PipelineService) recordRunEnd(ctx context.Context, run *models.PipelineRun) {
	if s.repos == nil {
		return
	}
	if err := s.repos.Run.Update(ctx, run); err != nil {
		s.log.WithError(err).Warn("Failed to record pipeline run end")
	}
}
