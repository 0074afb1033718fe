// Package logger provides pipeline event logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated pipeline run logging.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogStageStart logs the start of a pipeline stage for a symbol.
func (pl *PipelineLogger) LogStageStart(runID, symbol, stage string) {
	pl.WithFields(logrus.Fields{
		"run_id": runID,
		"symbol": symbol,
		"stage":  stage,
	}).Info("Pipeline stage started")
}

// LogStageComplete logs a completed pipeline stage with its output size.
func (pl *PipelineLogger) LogStageComplete(runID, symbol, stage string, rowCount int, version string, elapsed time.Duration) {
	pl.WithFields(logrus.Fields{
		"run_id":           runID,
		"symbol":           symbol,
		"stage":            stage,
		"row_count":        rowCount,
		"snapshot_version": version,
		"elapsed_ms":       elapsed.Milliseconds(),
	}).Info("Pipeline stage completed")
}

// LogStageFailure logs a failed pipeline stage.
func (pl *PipelineLogger) LogStageFailure(runID, symbol, stage string, err error) {
	pl.WithFields(logrus.Fields{
		"run_id": runID,
		"symbol": symbol,
		"stage":  stage,
		"error":  err.Error(),
	}).Error("Pipeline stage failed")
}

// LogDataPull logs a completed data source pull.
func (pl *PipelineLogger) LogDataPull(symbol, source string, rowCount int, firstDate, lastDate string) {
	pl.WithFields(logrus.Fields{
		"symbol":     symbol,
		"source":     source,
		"row_count":  rowCount,
		"first_date": firstDate,
		"last_date":  lastDate,
	}).Info("Price history pulled")
}

// LogRegimeSignal logs the most recent regime signal for a symbol.
func (pl *PipelineLogger) LogRegimeSignal(symbol, date string, zScore, riskOffProb float64) {
	pl.WithFields(logrus.Fields{
		"symbol":        symbol,
		"date":          date,
		"z_vol":         zScore,
		"risk_off_prob": riskOffProb,
	}).Info("Regime signal updated")
}

// LogBacktestRun logs a completed backtest.
func (pl *PipelineLogger) LogBacktestRun(symbol string, threshold, costBps float64, sampleCount, tradeCount int) {
	pl.WithFields(logrus.Fields{
		"symbol":       symbol,
		"threshold":    threshold,
		"cost_bps":     costBps,
		"sample_count": sampleCount,
		"trade_count":  tradeCount,
	}).Info("Backtest completed")
}
