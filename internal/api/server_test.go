package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/aegisquant/internal/config"
	"github.com/yourusername/aegisquant/internal/logger"
	"github.com/yourusername/aegisquant/internal/models"
	"github.com/yourusername/aegisquant/internal/service"
	"github.com/yourusername/aegisquant/internal/snapshot"
)

type stubSource struct {
	bars []models.PriceBar
}

func (s *stubSource) FetchDailyBars(ctx context.Context, symbol string, start time.Time) ([]models.PriceBar, error) {
	return s.bars, nil
}

func (s *stubSource) Name() string    { return "stub" }
func (s *stubSource) IsEnabled() bool { return true }

func stubBars(n int) []models.PriceBar {
	bars := make([]models.PriceBar, 0, n)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := 0; i < n; i++ {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
		}
		price *= 1 + 0.01*math.Sin(float64(i))
		close := price
		bars = append(bars, models.PriceBar{Date: day, Close: &close})
		day = day.AddDate(0, 0, 1)
	}
	return bars
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := snapshot.NewFSStore(t.TempDir())
	require.NoError(t, err)

	log := logger.NewLogger("error")
	svc := service.NewPipelineService(config.PipelineConfig{
		Symbols:      []string{"SPY"},
		StartDate:    "2024-01-01",
		Features:     config.FeatureConfig{VolWindow: 3, MomWindow: 5},
		Regime:       config.RegimeConfig{ZWindow: 6, Steepness: 1.25, Threshold: 0.7},
		Backtest:     config.BacktestConfig{Threshold: 0.7, CostBps: 5.0, Limit: 100},
		CacheTTLSecs: 60,
	}, &stubSource{bars: stubBars(60)}, store, nil, log)

	return NewServer(config.ServerConfig{Port: 0, ReadTimeoutSeconds: 5, WriteTimeoutSeconds: 5}, svc, log)
}

func doRequest(t *testing.T, server *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func runPipeline(t *testing.T, server *Server) {
	t.Helper()
	require.Equal(t, http.StatusOK, doRequest(t, server, http.MethodPost, "/data/pull?symbol=SPY").Code)
	require.Equal(t, http.StatusOK, doRequest(t, server, http.MethodPost, "/data/process?symbol=SPY").Code)
	require.Equal(t, http.StatusOK, doRequest(t, server, http.MethodPost, "/regime/run?symbol=SPY").Code)
}

func TestDataPullAndStatus(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/data/pull?symbol=spy")
	require.Equal(t, http.StatusOK, rec.Code)

	var pull map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pull))
	assert.Equal(t, "SPY", pull["symbol"])
	assert.Equal(t, float64(60), pull["row_count"])

	rec = doRequest(t, server, http.MethodGet, "/data/status?symbol=SPY")
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, true, status["available"])
}

func TestStatusBeforePullIsNotFound(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/data/status?symbol=SPY")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/regime/series?symbol=SPY")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlankSymbolIsBadRequest(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/data/pull?symbol=")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeaturePreviewDynamicColumns(t *testing.T) {
	server := newTestServer(t)
	runPipeline(t, server)

	rec := doRequest(t, server, http.MethodGet, "/data/features/preview?symbol=SPY&n=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var preview struct {
		VolWindow int                      `json:"vol_window"`
		MomWindow int                      `json:"mom_window"`
		Head      []map[string]interface{} `json:"head"`
		Tail      []map[string]interface{} `json:"tail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	require.Len(t, preview.Head, 2)
	require.Len(t, preview.Tail, 2)

	// Column names carry the configured windows
	assert.Contains(t, preview.Head[0], "vol_3")
	assert.Contains(t, preview.Tail[0], "mom_5")
}

func TestRegimeStatsEndpoint(t *testing.T) {
	server := newTestServer(t)
	runPipeline(t, server)

	rec := doRequest(t, server, http.MethodGet, "/stats/regime?symbol=SPY")
	require.Equal(t, http.StatusOK, rec.Code)

	var report models.RegimeStatsReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 0.7, report.Threshold)
	assert.Equal(t, report.RiskOn.SampleCount+report.RiskOff.SampleCount, report.UsableRows)
}

func TestBacktestRunEndpointExplicitZeroCost(t *testing.T) {
	server := newTestServer(t)
	runPipeline(t, server)

	rec := doRequest(t, server, http.MethodPost, "/backtest/run?symbol=SPY&cost_bps=0")
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	// Explicit zero is honored, not replaced by the default
	assert.Equal(t, float64(0), result["cost_bps"])
	assert.Equal(t, 0.7, result["threshold"])
}

func TestMetricsSummaryEndpoint(t *testing.T) {
	server := newTestServer(t)
	runPipeline(t, server)

	rec := doRequest(t, server, http.MethodGet, "/metrics/summary?symbol=SPY")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "SPY", summary["symbol"])
	assert.Contains(t, summary, "latest_signal")
}

func TestMethodNotAllowed(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/data/pull?symbol=SPY")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
