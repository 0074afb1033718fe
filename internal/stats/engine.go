// Package stats buckets dates by regime probability and reports forward
// return performance per bucket.
package stats

import (
	"fmt"
	"math"

	"github.com/yourusername/aegisquant/internal/align"
	"github.com/yourusername/aegisquant/internal/models"
)

const (
	// TradingDaysPerYear is the annualization base for daily statistics.
	TradingDaysPerYear = 252

	// MinBucketSamples is the smallest bucket for which return metrics are
	// reported; smaller buckets keep their counts but null their metrics.
	MinBucketSamples = 5

	// DefaultThreshold splits risk-on from risk-off probability.
	DefaultThreshold = 0.7
)

// Evaluate inner-joins the two series on date and attributes to each day
// the log return of the chronologically next joined row. Pairing the
// signal at t with the outcome at t+1 is the no-lookahead contract: a
// day's bucket assignment never sees that day's own forward outcome. The
// final date has no forward return and is excluded.
func Evaluate(feats []models.FeatureRow, regimes []models.RegimeRow, threshold float64) (*models.RegimeStatsReport, error) {
	threshold = clamp(threshold, 0, 1)

	joined, err := align.InnerJoin(feats, regimes)
	if err != nil {
		return nil, fmt.Errorf("joining features and regimes: %w", err)
	}
	if len(joined) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 overlapping dates for forward returns", models.ErrInsufficientData)
	}

	usable := len(joined) - 1
	riskOn := make([]float64, 0, usable)
	riskOff := make([]float64, 0, usable)
	for i := 0; i < usable; i++ {
		forward := joined[i+1].LogReturn
		if joined[i].RiskOffProb >= threshold {
			riskOff = append(riskOff, forward)
		} else {
			riskOn = append(riskOn, forward)
		}
	}

	report := &models.RegimeStatsReport{
		Threshold:  threshold,
		UsableRows: usable,
		RiskOn:     bucketStats(riskOn, usable),
		RiskOff:    bucketStats(riskOff, usable),
	}
	report.Delta = models.RegimeStatsDelta{
		MeanDailyReturn:      diff(report.RiskOn.MeanDailyReturn, report.RiskOff.MeanDailyReturn),
		AnnualizedReturn:     diff(report.RiskOn.AnnualizedReturn, report.RiskOff.AnnualizedReturn),
		AnnualizedVolatility: diff(report.RiskOn.AnnualizedVolatility, report.RiskOff.AnnualizedVolatility),
		SharpeRatio:          diff(report.RiskOn.SharpeRatio, report.RiskOff.SharpeRatio),
	}
	return report, nil
}

func bucketStats(returns []float64, total int) models.RegimeBucketStats {
	stats := models.RegimeBucketStats{
		SampleCount:      len(returns),
		CoverageFraction: float64(len(returns)) / float64(total),
	}
	if len(returns) < MinBucketSamples {
		return stats
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

	annReturn := mean * TradingDaysPerYear
	annVol := sampleStd * math.Sqrt(TradingDaysPerYear)

	stats.MeanDailyReturn = &mean
	stats.AnnualizedReturn = &annReturn
	stats.AnnualizedVolatility = &annVol
	if annVol > 0 {
		sharpe := annReturn / annVol
		stats.SharpeRatio = &sharpe
	}
	return stats
}

func diff(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	d := *a - *b
	return &d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
