package metrics

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordStageRun(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordStageRun("features", "completed", 0.5)
		RecordStageRun("regime", "failed", 0.1)
	})
}

func TestRecordSnapshotWrite(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordSnapshotWrite("raw")
		RecordSnapshotWrite("features")
		RecordSnapshotWrite("regime")
	})
}

func TestRecordPriceBarsPulled(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name     string
		count    int
		duration float64
	}{
		{
			name:     "normal pull",
			count:    2500,
			duration: 1.2,
		},
		{
			name:     "empty pull",
			count:    0,
			duration: 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordPriceBarsPulled(tt.count, tt.duration)
			})
		})
	}
}

func TestUpdateLatestRiskOffProb(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name string
		prob float64
	}{
		{
			name: "calm regime",
			prob: 0.12,
		},
		{
			name: "stressed regime",
			prob: 0.93,
		},
		{
			name: "boundary",
			prob: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateLatestRiskOffProb("SPY", tt.prob)
			})
		})
	}
}

func TestCacheCounters(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordCacheHit()
		RecordCacheMiss()
	})
}

func TestRecordBacktestRun(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordBacktestRun(0.25)
	})
}

func TestUpdateTrackedSymbols(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		UpdateTrackedSymbols(3)
	})
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()

	handler := Handler()
	assert.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)
}

func BenchmarkRecordStageRun(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordStageRun("features", "completed", 0.5)
	}
}

func BenchmarkUpdateLatestRiskOffProb(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		UpdateLatestRiskOffProb("SPY", 0.42)
	}
}
