package backtest

import (
	"math"
	"testing"
)

func TestSummarizeShortSeries(t *testing.T) {
	summary := Summarize([]float64{1, 1.01, 1.02, 1.03})
	if summary.SampleCount != 4 {
		t.Fatalf("expected sample count 4, got %d", summary.SampleCount)
	}
	if summary.CAGR != nil || summary.SharpeRatio != nil || summary.MaxDrawdown != nil {
		t.Fatalf("expected null metrics below minimum samples: %+v", summary)
	}
}

func TestSummarizeDoubling(t *testing.T) {
	// Equity doubling over exactly one trading year implies CAGR of 100%.
	n := 252
	equity := make([]float64, n)
	growth := math.Pow(2, 1.0/float64(n))
	value := 1.0
	for i := 0; i < n; i++ {
		value *= growth
		equity[i] = value
	}
	summary := Summarize(equity)
	if math.Abs(*summary.CAGR-1.0) > 1e-6 {
		t.Fatalf("expected cagr near 1.0, got %v", *summary.CAGR)
	}
	if *summary.MaxDrawdown != 0 {
		t.Fatalf("monotone curve should have zero drawdown, got %v", *summary.MaxDrawdown)
	}
}

func TestSummarizeConstantCurve(t *testing.T) {
	summary := Summarize([]float64{1, 1, 1, 1, 1, 1})
	if *summary.AnnualizedVolatility != 0 {
		t.Fatalf("expected zero volatility, got %v", *summary.AnnualizedVolatility)
	}
	if summary.SharpeRatio != nil {
		t.Fatalf("expected null sharpe for zero volatility")
	}
	if *summary.CAGR != 0 {
		t.Fatalf("expected zero cagr for flat curve, got %v", *summary.CAGR)
	}
}

func TestMaxDrawdownValue(t *testing.T) {
	equity := []float64{1, 1.2, 0.6, 0.9, 1.3}
	dd := maxDrawdown(equity)
	want := 0.6/1.2 - 1
	if math.Abs(dd-want) > 1e-12 {
		t.Fatalf("expected drawdown %v, got %v", want, dd)
	}
}
