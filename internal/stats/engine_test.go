package stats

import (
	"math"
	"testing"
	"time"

	"github.com/yourusername/aegisquant/internal/models"
)

func fixture(logReturns []float64, probs []float64) ([]models.FeatureRow, []models.RegimeRow) {
	start := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	feats := make([]models.FeatureRow, len(logReturns))
	regimes := make([]models.RegimeRow, len(probs))
	for i := range logReturns {
		feats[i] = models.FeatureRow{Date: start.AddDate(0, 0, i), Close: 100, LogReturn: logReturns[i]}
	}
	for i := range probs {
		regimes[i] = models.RegimeRow{Date: start.AddDate(0, 0, i), RiskOffProb: probs[i]}
	}
	return feats, regimes
}

func TestForwardReturnPairing(t *testing.T) {
	// Day i's bucket must receive day i+1's log return, never its own.
	// Probabilities alternate so any off-by-one misassigns returns.
	logReturns := []float64{0.001, 0.002, 0.003, 0.004, 0.005, 0.006, 0.007, 0.008, 0.009, 0.010, 0.011, 0.012}
	probs := []float64{0.9, 0.1, 0.9, 0.1, 0.9, 0.1, 0.9, 0.1, 0.9, 0.1, 0.9, 0.1}
	feats, regimes := fixture(logReturns, probs)

	report, err := Evaluate(feats, regimes, 0.5)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if report.UsableRows != 11 {
		t.Fatalf("expected 11 usable rows (last has no forward return), got %d", report.UsableRows)
	}

	// Risk-off days are indices 0,2,4,6,8,10; their forward returns are
	// returns at indices 1,3,5,7,9,11.
	wantOff := (0.002 + 0.004 + 0.006 + 0.008 + 0.010 + 0.012) / 6
	if report.RiskOff.SampleCount != 6 {
		t.Fatalf("expected 6 risk-off samples, got %d", report.RiskOff.SampleCount)
	}
	if report.RiskOff.MeanDailyReturn == nil || math.Abs(*report.RiskOff.MeanDailyReturn-wantOff) > 1e-12 {
		t.Fatalf("risk-off mean wrong: got %v want %v", report.RiskOff.MeanDailyReturn, wantOff)
	}

	wantOn := (0.003 + 0.005 + 0.007 + 0.009 + 0.011) / 5
	if report.RiskOn.SampleCount != 5 {
		t.Fatalf("expected 5 risk-on samples, got %d", report.RiskOn.SampleCount)
	}
	if report.RiskOn.MeanDailyReturn == nil || math.Abs(*report.RiskOn.MeanDailyReturn-wantOn) > 1e-12 {
		t.Fatalf("risk-on mean wrong: got %v want %v", report.RiskOn.MeanDailyReturn, wantOn)
	}
}

func TestAnnualizationAndSharpe(t *testing.T) {
	logReturns := []float64{0.01, 0.02, 0.01, 0.02, 0.01, 0.02, 0.01}
	probs := []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}
	feats, regimes := fixture(logReturns, probs)

	report, err := Evaluate(feats, regimes, 0.7)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	bucket := report.RiskOn
	if bucket.SampleCount != 6 {
		t.Fatalf("expected 6 samples, got %d", bucket.SampleCount)
	}

	// Forward returns: 0.02,0.01,0.02,0.01,0.02,0.01.
	mean := 0.015
	sampleStd := math.Sqrt((6 * 0.005 * 0.005) / 5)
	if math.Abs(*bucket.MeanDailyReturn-mean) > 1e-12 {
		t.Fatalf("mean wrong: %v", *bucket.MeanDailyReturn)
	}
	if math.Abs(*bucket.AnnualizedReturn-mean*252) > 1e-9 {
		t.Fatalf("annualized return wrong: %v", *bucket.AnnualizedReturn)
	}
	if math.Abs(*bucket.AnnualizedVolatility-sampleStd*math.Sqrt(252)) > 1e-9 {
		t.Fatalf("annualized volatility wrong: %v", *bucket.AnnualizedVolatility)
	}
	wantSharpe := (mean * 252) / (sampleStd * math.Sqrt(252))
	if math.Abs(*bucket.SharpeRatio-wantSharpe) > 1e-9 {
		t.Fatalf("sharpe wrong: %v", *bucket.SharpeRatio)
	}
}

func TestSmallBucketNullsMetricsButKeepsCoverage(t *testing.T) {
	logReturns := []float64{0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01}
	probs := []float64{0.9, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}
	feats, regimes := fixture(logReturns, probs)

	report, err := Evaluate(feats, regimes, 0.5)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if report.RiskOff.SampleCount != 1 {
		t.Fatalf("expected 1 risk-off sample, got %d", report.RiskOff.SampleCount)
	}
	if report.RiskOff.MeanDailyReturn != nil || report.RiskOff.SharpeRatio != nil {
		t.Fatalf("expected nulled metrics for small bucket: %+v", report.RiskOff)
	}
	if math.Abs(report.RiskOff.CoverageFraction-1.0/7.0) > 1e-12 {
		t.Fatalf("coverage wrong: %v", report.RiskOff.CoverageFraction)
	}
	if report.Delta.MeanDailyReturn != nil {
		t.Fatalf("delta must be null when either side is null")
	}
}

func TestConstantReturnsYieldNullSharpe(t *testing.T) {
	logReturns := []float64{0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01}
	probs := []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}
	feats, regimes := fixture(logReturns, probs)

	report, err := Evaluate(feats, regimes, 0.7)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if *report.RiskOn.AnnualizedVolatility != 0 {
		t.Fatalf("expected zero volatility, got %v", *report.RiskOn.AnnualizedVolatility)
	}
	if report.RiskOn.SharpeRatio != nil {
		t.Fatalf("expected null sharpe for zero volatility")
	}
}

func TestNoOverlapPropagates(t *testing.T) {
	feats, _ := fixture([]float64{0.01, 0.02}, []float64{0.5, 0.5})
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	regimes := []models.RegimeRow{{Date: start, RiskOffProb: 0.5}}
	if _, err := Evaluate(feats, regimes, 0.7); err == nil {
		t.Fatalf("expected join error for zero overlap")
	}
}
