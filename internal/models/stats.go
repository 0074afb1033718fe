package models

// RegimeBucketStats reports forward-return performance for one regime
// bucket. The return/vol/sharpe fields are nil below the minimum sample
// threshold; sample count and coverage are always populated.
type RegimeBucketStats struct {
	SampleCount          int      `json:"sample_count"`
	CoverageFraction     float64  `json:"coverage_fraction"`
	MeanDailyReturn      *float64 `json:"mean_daily_return"`
	AnnualizedReturn     *float64 `json:"annualized_return"`
	AnnualizedVolatility *float64 `json:"annualized_volatility"`
	SharpeRatio          *float64 `json:"sharpe_ratio"`
}

// RegimeStatsDelta holds risk-on-minus-risk-off differences per metric.
// A field is nil whenever either side of the difference is nil.
type RegimeStatsDelta struct {
	MeanDailyReturn      *float64 `json:"mean_daily_return"`
	AnnualizedReturn     *float64 `json:"annualized_return"`
	AnnualizedVolatility *float64 `json:"annualized_volatility"`
	SharpeRatio          *float64 `json:"sharpe_ratio"`
}

// RegimeStatsReport is the full output of the regime statistics engine.
type RegimeStatsReport struct {
	Threshold  float64           `json:"threshold"`
	UsableRows int               `json:"usable_rows"`
	RiskOn     RegimeBucketStats `json:"risk_on"`
	RiskOff    RegimeBucketStats `json:"risk_off"`
	Delta      RegimeStatsDelta  `json:"delta"`
}
