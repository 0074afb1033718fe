package backtest

import "math"

const (
	tradingDaysPerYear = 252

	// minSummarySamples is the smallest series for which metrics are
	// reported; below it every field except the sample count is null.
	minSummarySamples = 5
)

// Summary reports risk/return metrics for a single equity curve. All
// metric fields are nil when the curve is too short to summarize.
type Summary struct {
	SampleCount          int      `json:"sample_count"`
	CAGR                 *float64 `json:"cagr"`
	AnnualizedReturn     *float64 `json:"annualized_return"`
	AnnualizedVolatility *float64 `json:"annualized_volatility"`
	SharpeRatio          *float64 `json:"sharpe_ratio"`
	MaxDrawdown          *float64 `json:"max_drawdown"`
	FinalEquity          *float64 `json:"final_equity"`
}

// Summarize computes metrics over a full equity series (never a truncated
// display window). Daily returns are derived from consecutive equity
// values; annualization follows the 252-day convention.
func Summarize(equity []float64) Summary {
	summary := Summary{SampleCount: len(equity)}
	if len(equity) < minSummarySamples {
		return summary
	}

	final := equity[len(equity)-1]
	years := float64(len(equity)) / tradingDaysPerYear
	cagr := math.Pow(final, 1.0/years) - 1.0

	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		returns = append(returns, equity[i]/equity[i-1]-1)
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	ss := 0.0
	for _, r := range returns {
		diff := r - mean
		ss += diff * diff
	}
	sampleStd := math.Sqrt(ss / float64(len(returns)-1))

	annReturn := mean * tradingDaysPerYear
	annVol := sampleStd * math.Sqrt(tradingDaysPerYear)
	maxDD := maxDrawdown(equity)

	summary.CAGR = &cagr
	summary.AnnualizedReturn = &annReturn
	summary.AnnualizedVolatility = &annVol
	summary.MaxDrawdown = &maxDD
	summary.FinalEquity = &final
	if annVol > 0 {
		sharpe := annReturn / annVol
		summary.SharpeRatio = &sharpe
	}
	return summary
}

// maxDrawdown is the minimum over time of equity/runningMax - 1. It is
// always <= 0 and equals 0 only for a non-decreasing curve.
func maxDrawdown(equity []float64) float64 {
	maxDD := 0.0
	peak := math.Inf(-1)
	for _, value := range equity {
		if value > peak {
			peak = value
		}
		dd := value/peak - 1
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
