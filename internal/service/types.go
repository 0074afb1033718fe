package service

import (
	"github.com/yourusername/aegisquant/internal/models"
)

// Preview and series clamps. Out-of-range values are clamped silently.
const (
	DefaultPreviewRows = 5
	MaxPreviewRows     = 25
	DefaultSeriesRows  = 500
	MaxSeriesRows      = 5000
)

// PullResult summarizes a completed price pull.
type PullResult struct {
	Symbol          string `json:"symbol"`
	Source          string `json:"source"`
	RowCount        int    `json:"row_count"`
	FirstDate       string `json:"first_date,omitempty"`
	LastDate        string `json:"last_date,omitempty"`
	SnapshotVersion string `json:"snapshot_version"`
	RunID           string `json:"run_id"`
}

// StageStatus describes the latest stored artifact for one pipeline stage.
type StageStatus struct {
	Symbol          string `json:"symbol"`
	Stage           string `json:"stage"`
	Available       bool   `json:"available"`
	RowCount        int    `json:"row_count"`
	FirstDate       string `json:"first_date,omitempty"`
	LastDate        string `json:"last_date,omitempty"`
	SnapshotVersion string `json:"snapshot_version,omitempty"`
}

// StageResult summarizes a completed derivation stage.
type StageResult struct {
	Symbol          string `json:"symbol"`
	Stage           string `json:"stage"`
	RowCount        int    `json:"row_count"`
	FirstDate       string `json:"first_date,omitempty"`
	LastDate        string `json:"last_date,omitempty"`
	SnapshotVersion string `json:"snapshot_version"`
	RunID           string `json:"run_id"`
}

// FeaturePreviewResult carries the first and last n feature rows as flat
// records keyed by the windowed column names.
type FeaturePreviewResult struct {
	Symbol    string                   `json:"symbol"`
	VolWindow int                      `json:"vol_window"`
	MomWindow int                      `json:"mom_window"`
	RowCount  int                      `json:"row_count"`
	Head      []map[string]interface{} `json:"head"`
	Tail      []map[string]interface{} `json:"tail"`
}

// RegimePreviewResult carries the first and last n regime rows.
type RegimePreviewResult struct {
	Symbol   string             `json:"symbol"`
	Model    string             `json:"model"`
	ZWindow  int                `json:"z_window"`
	K        float64            `json:"k"`
	RowCount int                `json:"row_count"`
	Head     []models.RegimeRow `json:"head"`
	Tail     []models.RegimeRow `json:"tail"`
}

// MetricsSummary bundles the headline analytics for one symbol.
type MetricsSummary struct {
	Symbol       string                    `json:"symbol"`
	LatestSignal *models.RegimeRow         `json:"latest_signal,omitempty"`
	Stats        *models.RegimeStatsReport `json:"stats,omitempty"`
	Backtest     *BacktestHeadline         `json:"backtest,omitempty"`
}

// BacktestHeadline carries the backtest summary metrics without the
// point-by-point equity curve.
type BacktestHeadline struct {
	Threshold     float64  `json:"threshold"`
	CostBps       float64  `json:"cost_bps"`
	SampleCount   int      `json:"sample_count"`
	TradeCount    int      `json:"trade_count"`
	TradesPerYear float64  `json:"trades_per_year"`
	CostDrag      float64  `json:"cost_drag"`
	BuyHoldCAGR   *float64 `json:"buy_hold_cagr,omitempty"`
	RegimeNetCAGR *float64 `json:"regime_net_cagr,omitempty"`
}

// rawEnvelope is the raw-stage snapshot payload.
type rawEnvelope struct {
	Symbol string            `json:"symbol"`
	Source string            `json:"source"`
	Bars   []models.PriceBar `json:"bars"`
}
