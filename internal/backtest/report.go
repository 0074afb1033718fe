package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateConsoleReport formats a simulation result for terminal output.
func GenerateConsoleReport(result *Result) string {
	var builder strings.Builder
	builder.WriteString("Regime Backtest Report\n")
	builder.WriteString("======================\n")
	builder.WriteString(fmt.Sprintf("Samples: %d\n", result.SampleCount))
	builder.WriteString(fmt.Sprintf("Threshold: %.2f  Cost: %.1f bps\n", result.Threshold, result.CostBps))
	builder.WriteString(fmt.Sprintf("Trades: %d (%.1f per year)\n", result.TradeCount, result.TradesPerYear))
	builder.WriteString(fmt.Sprintf("Cost Drag: %.4f\n", result.CostDrag))
	builder.WriteString(formatSummaryLine("Buy & Hold", result.BuyHold))
	builder.WriteString(formatSummaryLine("Regime Gross", result.RegimeGross))
	builder.WriteString(formatSummaryLine("Regime Net", result.RegimeNet))
	return builder.String()
}

func formatSummaryLine(label string, s Summary) string {
	if s.CAGR == nil {
		return fmt.Sprintf("%-13s insufficient samples (%d)\n", label+":", s.SampleCount)
	}
	return fmt.Sprintf("%-13s CAGR %6.2f%%  Sharpe %s  MaxDD %6.2f%%  Final %.4f\n",
		label+":", *s.CAGR*100, formatOptional(s.SharpeRatio), *s.MaxDrawdown*100, *s.FinalEquity)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "   n/a"
	}
	return fmt.Sprintf("%6.2f", *v)
}

// ExportCurveCSV writes the emitted equity points for spreadsheets.
func ExportCurveCSV(result *Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(EquityCurve(result.Points).ToCSV()), 0o644)
}
