package service

import (
	"context"
	"time"

	"github.com/yourusername/aegisquant/internal/backtest"
	"github.com/yourusername/aegisquant/internal/features"
	"github.com/yourusername/aegisquant/internal/metrics"
	"github.com/yourusername/aegisquant/internal/models"
	"github.com/yourusername/aegisquant/internal/quality"
	"github.com/yourusername/aegisquant/internal/regime"
	"github.com/yourusername/aegisquant/internal/snapshot"
	"github.com/yourusername/aegisquant/internal/stats"
)

// DataStatus reports the latest raw snapshot for a symbol.
func (s *PipelineService) DataStatus(ctx context.Context, symbol string) (*StageStatus, error) {
	symbol = snapshot.NormalizeSymbol(symbol)
	raw, version, err := s.loadRaw(ctx, symbol)
	if err != nil {
		return nil, err
	}

	status := &StageStatus{
		Symbol:          symbol,
		Stage:           string(snapshot.StageRaw),
		Available:       true,
		RowCount:        len(raw.Bars),
		SnapshotVersion: string(version),
	}
	if len(raw.Bars) > 0 {
		status.FirstDate = raw.Bars[0].Date.Format(models.DateLayout)
		status.LastDate = raw.Bars[len(raw.Bars)-1].Date.Format(models.DateLayout)
	}
	return status, nil
}

// QualityReport checks the latest raw snapshot for duplicates, calendar
// gaps and missing fields.
func (s *PipelineService) QualityReport(ctx context.Context, symbol string) (*models.QualityReport, error) {
	symbol = snapshot.NormalizeSymbol(symbol)
	raw, _, err := s.loadRaw(ctx, symbol)
	if err != nil {
		return nil, err
	}
	report := quality.Report(raw.Bars)
	return &report, nil
}

// FeatureStatus reports the latest features snapshot for a symbol.
func (s *PipelineService) FeatureStatus(ctx context.Context, symbol string) (*StageStatus, error) {
	symbol = snapshot.NormalizeSymbol(symbol)
	feats, version, err := s.loadFeatures(ctx, symbol)
	if err != nil {
		return nil, err
	}

	status := &StageStatus{
		Symbol:          symbol,
		Stage:           string(snapshot.StageFeatures),
		Available:       true,
		RowCount:        len(feats.Rows),
		SnapshotVersion: string(version),
	}
	if len(feats.Rows) > 0 {
		status.FirstDate = feats.Rows[0].Date.Format(models.DateLayout)
		status.LastDate = feats.Rows[len(feats.Rows)-1].Date.Format(models.DateLayout)
	}
	return status, nil
}

// FeaturePreview returns the first and last n feature rows. n is clamped
// to [1, MaxPreviewRows]; zero or negative uses the default.
func (s *PipelineService) FeaturePreview(ctx context.Context, symbol string, n int) (*FeaturePreviewResult, error) {
	symbol = snapshot.NormalizeSymbol(symbol)
	feats, _, err := s.loadFeatures(ctx, symbol)
	if err != nil {
		return nil, err
	}

	n = clampRows(n, DefaultPreviewRows, MaxPreviewRows)
	records := feats.Records()
	return &FeaturePreviewResult{
		Symbol:    feats.Symbol,
		VolWindow: feats.VolWindow,
		MomWindow: feats.MomWindow,
		RowCount:  len(records),
		Head:      headOf(records, n),
		Tail:      tailOf(records, n),
	}, nil
}

// FeatureSeries returns the trailing limit feature rows. limit is clamped
// to [1, MaxSeriesRows]; zero or negative uses the default.
func (s *PipelineService) FeatureSeries(ctx context.Context, symbol string, limit int) (*features.Series, error) {
	symbol = snapshot.NormalizeSymbol(symbol)
	feats, _, err := s.loadFeatures(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return tailFeatures(feats, clampRows(limit, DefaultSeriesRows, MaxSeriesRows)), nil
}

// RegimeStatus reports the latest regime snapshot for a symbol.
func (s *PipelineService) RegimeStatus(ctx context.Context, symbol string) (*StageStatus, error) {
	symbol = snapshot.NormalizeSymbol(symbol)
	scores, version, err := s.loadRegime(ctx, symbol)
	if err != nil {
		return nil, err
	}

	status := &StageStatus{
		Symbol:          symbol,
		Stage:           string(snapshot.StageRegime),
		Available:       true,
		RowCount:        len(scores.Rows),
		SnapshotVersion: string(version),
	}
	if len(scores.Rows) > 0 {
		status.FirstDate = scores.Rows[0].Date.Format(models.DateLayout)
		status.LastDate = scores.Rows[len(scores.Rows)-1].Date.Format(models.DateLayout)
	}
	return status, nil
}

// RegimePreview returns the first and last n regime rows with the same
// clamping as FeaturePreview.
func (s *PipelineService) RegimePreview(ctx context.Context, symbol string, n int) (*RegimePreviewResult, error) {
	symbol = snapshot.NormalizeSymbol(symbol)
	scores, _, err := s.loadRegime(ctx, symbol)
	if err != nil {
		return nil, err
	}

	n = clampRows(n, DefaultPreviewRows, MaxPreviewRows)
	return &RegimePreviewResult{
		Symbol:   scores.Symbol,
		Model:    scores.Model,
		ZWindow:  scores.ZWindow,
		K:        scores.K,
		RowCount: len(scores.Rows),
		Head:     headOf(scores.Rows, n),
		Tail:     tailOf(scores.Rows, n),
	}, nil
}

// RegimeSeries returns the trailing limit regime rows with the same
// clamping as FeatureSeries.
func (s *PipelineService) RegimeSeries(ctx context.Context, symbol string, limit int) (*regime.Series, error) {
	symbol = snapshot.NormalizeSymbol(symbol)
	scores, _, err := s.loadRegime(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return tailRegime(scores, clampRows(limit, DefaultSeriesRows, MaxSeriesRows)), nil
}

// DefaultRegimeThreshold returns the configured risk-off threshold.
func (s *PipelineService) DefaultRegimeThreshold() float64 {
	if s.cfg.Regime.Threshold > 0 {
		return s.cfg.Regime.Threshold
	}
	return stats.DefaultThreshold
}

// RegimeStats buckets forward returns by regime probability at the given
// threshold. Out-of-range thresholds are clamped to [0, 1].
func (s *PipelineService) RegimeStats(ctx context.Context, symbol string, threshold float64) (*models.RegimeStatsReport, error) {
	symbol = snapshot.NormalizeSymbol(symbol)

	feats, _, err := s.loadFeatures(ctx, symbol)
	if err != nil {
		return nil, err
	}
	scores, _, err := s.loadRegime(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return stats.Evaluate(feats.Rows, scores.Rows, threshold)
}

// DefaultBacktestConfig returns the configured backtest defaults. Callers
// resolve parameter defaults before invoking RunBacktest so an explicit
// zero keeps its meaning (a threshold of 0 is always risk-off).
func (s *PipelineService) DefaultBacktestConfig() backtest.Config {
	cfg := backtest.Config{
		Threshold: s.cfg.Backtest.Threshold,
		CostBps:   s.cfg.Backtest.CostBps,
		Limit:     s.cfg.Backtest.Limit,
	}
	if cfg.Limit == 0 {
		cfg.Limit = backtest.DefaultLimit
	}
	return cfg
}

// RunBacktest simulates the regime-timed strategy against buy-and-hold.
// Out-of-range config fields are clamped by the engine.
func (s *PipelineService) RunBacktest(ctx context.Context, symbol string, cfg backtest.Config) (*backtest.Result, error) {
	symbol = snapshot.NormalizeSymbol(symbol)

	feats, _, err := s.loadFeatures(ctx, symbol)
	if err != nil {
		return nil, err
	}
	scores, _, err := s.loadRegime(ctx, symbol)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := backtest.Run(feats.Rows, scores.Rows, cfg)
	if err != nil {
		return nil, err
	}
	metrics.RecordBacktestRun(time.Since(start).Seconds())
	s.plog.LogBacktestRun(symbol, result.Threshold, result.CostBps, result.SampleCount, result.TradeCount)
	return result, nil
}

// Summary bundles the latest regime signal, the regime-conditioned return
// statistics and a default-parameter backtest for one symbol.
func (s *PipelineService) Summary(ctx context.Context, symbol string) (*MetricsSummary, error) {
	symbol = snapshot.NormalizeSymbol(symbol)
	summary := &MetricsSummary{Symbol: symbol}

	scores, _, err := s.loadRegime(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(scores.Rows) > 0 {
		last := scores.Rows[len(scores.Rows)-1]
		summary.LatestSignal = &last
	}

	if report, err := s.RegimeStats(ctx, symbol, s.DefaultRegimeThreshold()); err == nil {
		summary.Stats = report
	}

	if result, err := s.RunBacktest(ctx, symbol, s.DefaultBacktestConfig()); err == nil {
		summary.Backtest = &BacktestHeadline{
			Threshold:     result.Threshold,
			CostBps:       result.CostBps,
			SampleCount:   result.SampleCount,
			TradeCount:    result.TradeCount,
			TradesPerYear: result.TradesPerYear,
			CostDrag:      result.CostDrag,
			BuyHoldCAGR:   result.BuyHold.CAGR,
			RegimeNetCAGR: result.RegimeNet.CAGR,
		}
	}

	return summary, nil
}

func headOf[T any](rows []T, n int) []T {
	if len(rows) > n {
		rows = rows[:n]
	}
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}

func tailOf[T any](rows []T, n int) []T {
	if len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}

func clampRows(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func tailFeatures(feats *features.Series, limit int) *features.Series {
	out := &features.Series{
		Symbol:    feats.Symbol,
		VolWindow: feats.VolWindow,
		MomWindow: feats.MomWindow,
		Rows:      feats.Rows,
	}
	if len(out.Rows) > limit {
		out.Rows = out.Rows[len(out.Rows)-limit:]
	}
	return out
}

func tailRegime(scores *regime.Series, limit int) *regime.Series {
	out := &regime.Series{
		Symbol:  scores.Symbol,
		Model:   scores.Model,
		ZWindow: scores.ZWindow,
		K:       scores.K,
		Rows:    scores.Rows,
	}
	if len(out.Rows) > limit {
		out.Rows = out.Rows[len(out.Rows)-limit:]
	}
	return out
}
