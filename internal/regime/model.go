// Package regime normalizes a volatility feature into a bounded risk-off
// probability via a rolling z-score and a logistic transform.
package regime

import (
	"fmt"
	"math"
	"sort"

	"github.com/yourusername/aegisquant/internal/features"
	"github.com/yourusername/aegisquant/internal/models"
	"github.com/yourusername/aegisquant/internal/rolling"
)

// BaselineModel is the only regime model; there is no fitting step, only
// application of the fixed-form transform.
const BaselineModel = "baseline"

// Defaults: one trading year of normalization and the transition sharpness
// used by the reference parameterization.
const (
	DefaultZWindow = 252
	DefaultK       = 1.25
)

// Options parameterize the baseline transform. Probabilities are only
// comparable across runs that share the same ZWindow and K.
type Options struct {
	VolColumn string
	ZWindow   int
	K         float64
}

// Series is a regime score table tied to the parameters that produced it.
type Series struct {
	Symbol  string             `json:"symbol,omitempty"`
	Model   string             `json:"model"`
	ZWindow int                `json:"z_window"`
	K       float64            `json:"k"`
	Rows    []models.RegimeRow `json:"rows"`
}

// Build applies the baseline transform to the feature series' volatility
// column. Indices where the normalization window is not full, or where its
// standard deviation is zero, are dropped rather than null-filled, so the
// output can be shorter than the input.
func Build(feats *features.Series, opts Options) (*Series, error) {
	if feats == nil || len(feats.Rows) == 0 {
		return nil, models.ErrEmptyInput
	}
	if opts.VolColumn == "" {
		opts.VolColumn = feats.VolColumn()
	}
	if opts.VolColumn != feats.VolColumn() {
		return nil, fmt.Errorf("volatility column %s not present in feature series (have %s)",
			opts.VolColumn, feats.VolColumn())
	}
	// K passes through as given; callers resolve defaults. ZWindow below
	// the defined minimum clamps rather than failing.
	if opts.ZWindow < 2 {
		opts.ZWindow = 2
	}

	rows := make([]models.FeatureRow, len(feats.Rows))
	copy(rows, feats.Rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	vol := make([]float64, len(rows))
	for i, row := range rows {
		vol[i] = row.RollingVol
	}
	mu := rolling.Mean(vol, opts.ZWindow)
	sd := rolling.Std(vol, opts.ZWindow)

	out := &Series{
		Symbol:  feats.Symbol,
		Model:   BaselineModel,
		ZWindow: opts.ZWindow,
		K:       opts.K,
		Rows:    make([]models.RegimeRow, 0, len(rows)),
	}
	for i := range rows {
		if !rolling.Defined(mu[i]) || !rolling.Defined(sd[i]) || sd[i] == 0 {
			continue
		}
		z := (vol[i] - mu[i]) / sd[i]
		out.Rows = append(out.Rows, models.RegimeRow{
			Date:        rows[i].Date,
			ZScore:      z,
			RiskOffProb: sigmoid(opts.K * z),
		})
	}
	if len(out.Rows) == 0 {
		return nil, fmt.Errorf("%w: %d feature rows cannot fill z window %d",
			models.ErrInsufficientData, len(rows), opts.ZWindow)
	}
	return out, nil
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
