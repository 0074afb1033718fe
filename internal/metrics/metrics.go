// Package metrics provides the centralized Prometheus metrics registry for
// the analytics pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aegisquant",
		Name:      "pipeline_runs_total",
		Help:      "Total number of pipeline stage runs by stage and status",
	}, []string{"stage", "status"})
	SnapshotWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aegisquant",
		Name:      "snapshot_writes_total",
		Help:      "Total number of snapshot artifacts written by stage",
	}, []string{"stage"})
	PriceBarsPulledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "aegisquant",
		Name:      "price_bars_pulled_total",
		Help:      "Total number of daily price bars pulled from data sources",
	})
	BacktestRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "aegisquant",
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "aegisquant",
		Name:      "cache_hits_total",
		Help:      "Total number of read cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "aegisquant",
		Name:      "cache_misses_total",
		Help:      "Total number of read cache misses",
	})
)

// Gauge metrics
var (
	LatestRiskOffProb = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "aegisquant",
		Name:      "latest_risk_off_probability",
		Help:      "Most recent risk-off probability per symbol",
	}, []string{"symbol"})
	LastRefreshTimestamp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "aegisquant",
		Name:      "last_refresh_timestamp_seconds",
		Help:      "Unix timestamp of the last successful pipeline refresh per symbol",
	}, []string{"symbol"})
	TrackedSymbols = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "aegisquant",
		Name:      "tracked_symbols",
		Help:      "Number of symbols tracked by the scheduler",
	})
)

// Histogram metrics
var (
	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "aegisquant",
		Name:      "stage_duration_seconds",
		Help:      "Duration of pipeline stages in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})
	DataPullDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "aegisquant",
		Name:      "data_pull_duration_seconds",
		Help:      "Duration of data source pulls in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "aegisquant",
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PipelineRunsTotal)
		registry.MustRegister(SnapshotWritesTotal)
		registry.MustRegister(PriceBarsPulledTotal)
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(CacheHitsTotal)
		registry.MustRegister(CacheMissesTotal)

		// Register gauge metrics
		registry.MustRegister(LatestRiskOffProb)
		registry.MustRegister(LastRefreshTimestamp)
		registry.MustRegister(TrackedSymbols)

		// Register histogram metrics
		registry.MustRegister(StageDuration)
		registry.MustRegister(DataPullDuration)
		registry.MustRegister(BacktestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordStageRun records a completed pipeline stage run.
func RecordStageRun(stage, status string, durationSeconds float64) {
	PipelineRunsTotal.WithLabelValues(stage, status).Inc()
	StageDuration.WithLabelValues(stage).Observe(durationSeconds)
}

// RecordSnapshotWrite records a snapshot artifact write.
func RecordSnapshotWrite(stage string) {
	SnapshotWritesTotal.WithLabelValues(stage).Inc()
}

// RecordPriceBarsPulled records the number of bars pulled from a source.
func RecordPriceBarsPulled(count int, durationSeconds float64) {
	PriceBarsPulledTotal.Add(float64(count))
	DataPullDuration.Observe(durationSeconds)
}

// RecordBacktestRun records a backtest run.
func RecordBacktestRun(durationSeconds float64) {
	BacktestRunsTotal.Inc()
	BacktestDuration.Observe(durationSeconds)
}

// RecordCacheHit records a read cache hit.
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a read cache miss.
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// UpdateLatestRiskOffProb updates the latest risk-off probability gauge.
func UpdateLatestRiskOffProb(symbol string, prob float64) {
	LatestRiskOffProb.WithLabelValues(symbol).Set(prob)
}

// UpdateLastRefresh updates the last successful refresh timestamp gauge.
func UpdateLastRefresh(symbol string, unixSeconds float64) {
	LastRefreshTimestamp.WithLabelValues(symbol).Set(unixSeconds)
}

// UpdateTrackedSymbols updates the tracked symbols gauge.
func UpdateTrackedSymbols(count int) {
	TrackedSymbols.Set(float64(count))
}
