package features

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/yourusername/aegisquant/internal/models"
)

func barsFromCloses(closes []float64) []models.PriceBar {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, len(closes))
	for i := range closes {
		c := closes[i]
		bars[i] = models.PriceBar{Date: start.AddDate(0, 0, i), Close: &c}
	}
	return bars
}

func TestLogReturns(t *testing.T) {
	series, err := Build(barsFromCloses([]float64{100, 105, 110.25}), 2, 1)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(series.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(series.Rows))
	}
	if math.Abs(series.Rows[0].LogReturn-math.Log(1.05)) > 1e-9 {
		t.Fatalf("expected ln(1.05), got %v", series.Rows[0].LogReturn)
	}
	if math.Abs(series.Rows[1].LogReturn-math.Log(110.25/105)) > 1e-9 {
		t.Fatalf("expected ln(110.25/105), got %v", series.Rows[1].LogReturn)
	}
}

func TestRowCountForDefaultWindows(t *testing.T) {
	closes := make([]float64, 1000)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i)/7)*5 + float64(i)*0.01
	}
	series, err := Build(barsFromCloses(closes), DefaultVolWindow, DefaultMomWindow)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(series.Rows) != 940 {
		t.Fatalf("expected exactly 940 rows for 1000 bars, got %d", len(series.Rows))
	}
}

func TestUnsortedInputIsSortedAndNotMutated(t *testing.T) {
	bars := barsFromCloses([]float64{100, 101, 102, 103, 104, 105})
	shuffled := []models.PriceBar{bars[3], bars[0], bars[5], bars[1], bars[4], bars[2]}
	original := make([]models.PriceBar, len(shuffled))
	copy(original, shuffled)

	series, err := Build(shuffled, 2, 2)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i := 1; i < len(series.Rows); i++ {
		if !series.Rows[i].Date.After(series.Rows[i-1].Date) {
			t.Fatalf("rows not strictly ascending at %d", i)
		}
	}
	if !reflect.DeepEqual(original, shuffled) {
		t.Fatalf("input slice was mutated")
	}
}

func TestDrawdownNeverPositive(t *testing.T) {
	series, err := Build(barsFromCloses([]float64{100, 120, 90, 95, 130, 80, 85, 140}), 2, 2)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, row := range series.Rows {
		if row.Drawdown > 0 {
			t.Fatalf("drawdown %v > 0 on %s", row.Drawdown, row.Date)
		}
	}
}

func TestConstantPriceSeries(t *testing.T) {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 50
	}
	series, err := Build(barsFromCloses(closes), DefaultVolWindow, DefaultMomWindow)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, row := range series.Rows {
		if row.RollingVol != 0 || row.LogReturn != 0 || row.Momentum != 0 || row.Drawdown != 0 {
			t.Fatalf("expected all-zero features for constant price, got %+v", row)
		}
	}
}

func TestIdempotence(t *testing.T) {
	closes := make([]float64, 300)
	for i := range closes {
		closes[i] = 100 + math.Cos(float64(i)/11)*9
	}
	bars := barsFromCloses(closes)
	first, err := Build(bars, DefaultVolWindow, DefaultMomWindow)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	second, err := Build(bars, DefaultVolWindow, DefaultMomWindow)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two identical builds produced different series")
	}
}

func TestInsufficientHistory(t *testing.T) {
	_, err := Build(barsFromCloses([]float64{100, 101, 102}), DefaultVolWindow, DefaultMomWindow)
	if err == nil {
		t.Fatalf("expected insufficient data error")
	}
	if _, err := Build(nil, 2, 2); err != models.ErrEmptyInput {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestSeriesJSONRoundTrip(t *testing.T) {
	volume := 1250.0
	closes := []float64{100, 101, 99, 102, 104}
	bars := barsFromCloses(closes)
	bars[4].Volume = &volume

	series, err := Build(bars, 2, 2)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	series.Symbol = "SPY"

	data, err := json.Marshal(series)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("unmarshal to map failed: %v", err)
	}
	rows := generic["rows"].([]interface{})
	first := rows[0].(map[string]interface{})
	for _, key := range []string{"date", "close", "log_return", "vol_2", "mom_2", "drawdown"} {
		if _, ok := first[key]; !ok {
			t.Fatalf("serialized row missing column %s", key)
		}
	}

	var decoded Series
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !reflect.DeepEqual(series.Rows, decoded.Rows) {
		t.Fatalf("round trip changed rows")
	}
	if decoded.Symbol != "SPY" || decoded.VolWindow != 2 || decoded.MomWindow != 2 {
		t.Fatalf("round trip lost metadata: %+v", decoded)
	}
}
