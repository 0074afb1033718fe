package regime

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/yourusername/aegisquant/internal/features"
	"github.com/yourusername/aegisquant/internal/models"
)

func featureSeries(vols []float64) *features.Series {
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]models.FeatureRow, len(vols))
	for i, v := range vols {
		rows[i] = models.FeatureRow{
			Date:       start.AddDate(0, 0, i),
			Close:      100,
			RollingVol: v,
		}
	}
	return &features.Series{VolWindow: 20, MomWindow: 60, Rows: rows}
}

func oscillatingVols(n int) []float64 {
	vols := make([]float64, n)
	for i := range vols {
		vols[i] = 0.01 + 0.005*math.Sin(float64(i)/5)
	}
	return vols
}

func TestProbabilitiesStrictlyBounded(t *testing.T) {
	series, err := Build(featureSeries(oscillatingVols(60)), Options{ZWindow: 10, K: DefaultK})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(series.Rows) != 51 {
		t.Fatalf("expected 51 rows for 60 inputs and window 10, got %d", len(series.Rows))
	}
	for _, row := range series.Rows {
		if row.RiskOffProb <= 0 || row.RiskOffProb >= 1 {
			t.Fatalf("probability %v outside (0,1) on %s", row.RiskOffProb, row.Date)
		}
	}
}

func TestVanishingSharpnessCentersProbabilities(t *testing.T) {
	series, err := Build(featureSeries(oscillatingVols(60)), Options{ZWindow: 10, K: 1e-12})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, row := range series.Rows {
		if math.Abs(row.RiskOffProb-0.5) > 1e-9 {
			t.Fatalf("expected probability near 0.5 as k vanishes, got %v", row.RiskOffProb)
		}
	}
}

func TestSharpnessPassesThroughUnresolved(t *testing.T) {
	// K is taken as given; a zero flattens every probability to exactly
	// one half instead of silently becoming the default.
	series, err := Build(featureSeries(oscillatingVols(60)), Options{ZWindow: 10, K: 0})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if series.K != 0 {
		t.Fatalf("expected k to pass through as 0, got %v", series.K)
	}
	for _, row := range series.Rows {
		if row.RiskOffProb != 0.5 {
			t.Fatalf("expected probability 0.5 under k=0, got %v", row.RiskOffProb)
		}
	}
}

func TestZeroVarianceWindowsAreDropped(t *testing.T) {
	// Constant volatility for the first stretch, then variation: the
	// constant windows have zero std and must be silently excluded.
	vols := make([]float64, 40)
	for i := range vols {
		if i < 20 {
			vols[i] = 0.02
		} else {
			vols[i] = 0.02 + 0.001*float64(i-19)
		}
	}
	series, err := Build(featureSeries(vols), Options{ZWindow: 10, K: DefaultK})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, row := range series.Rows {
		// Windows ending before index 20 are all-constant.
		if row.Date.Before(time.Date(2021, 3, 21, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("zero-variance window leaked into output at %s", row.Date)
		}
	}
	if len(series.Rows) == 0 {
		t.Fatalf("expected surviving rows after the constant stretch")
	}
}

func TestZScoreValue(t *testing.T) {
	// Window [1,2,3]: mean 2, sample std 1, so z at the last index is 1 and
	// the probability is sigmoid(k).
	series, err := Build(featureSeries([]float64{1, 2, 3}), Options{ZWindow: 3, K: 2})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(series.Rows) != 1 {
		t.Fatalf("expected a single row, got %d", len(series.Rows))
	}
	if math.Abs(series.Rows[0].ZScore-1.0) > 1e-9 {
		t.Fatalf("expected z=1, got %v", series.Rows[0].ZScore)
	}
	want := 1.0 / (1.0 + math.Exp(-2.0))
	if math.Abs(series.Rows[0].RiskOffProb-want) > 1e-9 {
		t.Fatalf("expected sigmoid(2)=%v, got %v", want, series.Rows[0].RiskOffProb)
	}
}

func TestInsufficientRowsForWindow(t *testing.T) {
	if _, err := Build(featureSeries(oscillatingVols(30)), Options{ZWindow: DefaultZWindow}); err == nil {
		t.Fatalf("expected insufficient data error")
	}
	if _, err := Build(nil, Options{}); err != models.ErrEmptyInput {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestMismatchedVolColumn(t *testing.T) {
	if _, err := Build(featureSeries(oscillatingVols(30)), Options{VolColumn: "vol_99", ZWindow: 10}); err == nil {
		t.Fatalf("expected error for unknown volatility column")
	}
}

func TestRowsSerializeCalendarDays(t *testing.T) {
	series, err := Build(featureSeries(oscillatingVols(60)), Options{ZWindow: 10, K: DefaultK})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	payload, err := json.Marshal(series)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	// Dates must match the feature series format, with no time component.
	if !strings.Contains(string(payload), `"date":"2021-03-10"`) {
		t.Fatalf("expected calendar-day dates in payload, got %s", payload)
	}
	if strings.Contains(string(payload), "T00:00:00Z") {
		t.Fatalf("regime rows serialized with a time component: %s", payload)
	}

	var decoded Series
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(series, &decoded) {
		t.Fatalf("series changed across a marshal round trip")
	}
}

func TestIdempotence(t *testing.T) {
	feats := featureSeries(oscillatingVols(80))
	opts := Options{ZWindow: 15, K: DefaultK}
	first, err := Build(feats, opts)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	second, err := Build(feats, opts)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two identical builds produced different series")
	}
}
