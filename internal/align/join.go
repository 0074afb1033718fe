// Package align merges independently produced series by calendar date.
package align

import (
	"sort"

	"github.com/yourusername/aegisquant/internal/models"
)

// JoinedRow is one date carrying both the engineered features and the
// regime signal for that day.
type JoinedRow struct {
	Date        string  `json:"date"`
	Close       float64 `json:"close"`
	LogReturn   float64 `json:"log_return"`
	RiskOffProb float64 `json:"risk_off_prob"`
}

// InnerJoin merges feature and regime rows on date with a two-pointer walk
// over date-sorted copies. Dates present on only one side are dropped; zero
// overlap is a hard error, not an empty result. Neither input is mutated.
func InnerJoin(feats []models.FeatureRow, regimes []models.RegimeRow) ([]JoinedRow, error) {
	if len(feats) == 0 || len(regimes) == 0 {
		return nil, models.ErrInsufficientData
	}

	sortedFeats := make([]models.FeatureRow, len(feats))
	copy(sortedFeats, feats)
	sort.SliceStable(sortedFeats, func(i, j int) bool {
		return sortedFeats[i].Date.Before(sortedFeats[j].Date)
	})

	sortedRegimes := make([]models.RegimeRow, len(regimes))
	copy(sortedRegimes, regimes)
	sort.SliceStable(sortedRegimes, func(i, j int) bool {
		return sortedRegimes[i].Date.Before(sortedRegimes[j].Date)
	})

	joined := make([]JoinedRow, 0, min(len(sortedFeats), len(sortedRegimes)))
	i, j := 0, 0
	for i < len(sortedFeats) && j < len(sortedRegimes) {
		fd := sortedFeats[i].Date
		rd := sortedRegimes[j].Date
		switch {
		case fd.Before(rd):
			i++
		case rd.Before(fd):
			j++
		default:
			joined = append(joined, JoinedRow{
				Date:        fd.Format(models.DateLayout),
				Close:       sortedFeats[i].Close,
				LogReturn:   sortedFeats[i].LogReturn,
				RiskOffProb: sortedRegimes[j].RiskOffProb,
			})
			i++
			j++
		}
	}
	if len(joined) == 0 {
		return nil, models.ErrNoOverlap
	}
	return joined, nil
}
