// Package features derives return, volatility, momentum and drawdown
// series from raw daily price history.
package features

import (
	"fmt"
	"math"

	"github.com/yourusername/aegisquant/internal/models"
	"github.com/yourusername/aegisquant/internal/rolling"
)

// Default rolling windows, in trading days.
const (
	DefaultVolWindow = 20
	DefaultMomWindow = 60
)

// Build engineers the feature series from raw bars. The input may arrive
// in any order and is never mutated; output is a pure function of the
// sorted input and the two window sizes. Out-of-range windows fall back to
// the defaults rather than failing.
func Build(bars []models.PriceBar, volWindow, momWindow int) (*Series, error) {
	if len(bars) == 0 {
		return nil, models.ErrEmptyInput
	}
	if volWindow < 2 {
		volWindow = DefaultVolWindow
	}
	if momWindow < 1 {
		momWindow = DefaultMomWindow
	}

	sorted := models.SortBarsByDate(bars)
	usable := sorted[:0:0]
	for _, bar := range sorted {
		if bar.Close != nil {
			usable = append(usable, bar)
		}
	}
	if len(usable) == 0 {
		return nil, models.ErrMissingClose
	}

	n := len(usable)
	closes := make([]float64, n)
	for i, bar := range usable {
		closes[i] = *bar.Close
	}

	logReturns := make([]float64, n)
	logReturns[0] = math.NaN()
	for i := 1; i < n; i++ {
		logReturns[i] = math.Log(closes[i] / closes[i-1])
	}

	// The undefined first log return is treated as zero inside the rolling
	// window only; it is never surfaced as a feature value.
	volInput := make([]float64, n)
	copy(volInput, logReturns)
	volInput[0] = 0
	vol := rolling.Std(volInput, volWindow)

	momentum := make([]float64, n)
	for i := range momentum {
		if i >= momWindow {
			momentum[i] = math.Log(closes[i] / closes[i-momWindow])
		} else {
			momentum[i] = math.NaN()
		}
	}

	rows := make([]models.FeatureRow, 0, n)
	runningMax := math.Inf(-1)
	for i := 0; i < n; i++ {
		if closes[i] > runningMax {
			runningMax = closes[i]
		}
		drawdown := closes[i]/runningMax - 1

		if !rolling.Defined(logReturns[i]) || !rolling.Defined(vol[i]) || !rolling.Defined(momentum[i]) {
			continue
		}
		rows = append(rows, models.FeatureRow{
			Date:       usable[i].Date,
			Close:      closes[i],
			Volume:     usable[i].Volume,
			LogReturn:  logReturns[i],
			RollingVol: vol[i],
			Momentum:   momentum[i],
			Drawdown:   drawdown,
		})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %d usable bars cannot fill windows vol=%d mom=%d",
			models.ErrInsufficientData, n, volWindow, momWindow)
	}

	return &Series{VolWindow: volWindow, MomWindow: momWindow, Rows: rows}, nil
}
