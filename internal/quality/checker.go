// Package quality validates raw price histories independently of the
// modeling path.
package quality

import (
	"time"

	"github.com/yourusername/aegisquant/internal/models"
)

// maxMissingSample caps the number of missing business days reported.
const maxMissingSample = 10

// Report computes basic sanity checks over a raw price history: duplicate
// dates, gaps against a naive Monday-Friday calendar (no holiday awareness,
// deliberately), and missing close/volume fields. An empty input yields
// ok=false with an explicit error code; any non-empty input reports ok=true
// even when every count is zero.
func Report(bars []models.PriceBar) models.QualityReport {
	if len(bars) == 0 {
		return models.QualityReport{
			OK:                    false,
			Error:                 "empty_input",
			MissingBusinessSample: []string{},
		}
	}

	sorted := models.SortBarsByDate(bars)
	report := models.QualityReport{
		OK:                    true,
		RowCount:              len(sorted),
		FirstDate:             sorted[0].Date.Format(models.DateLayout),
		LastDate:              sorted[len(sorted)-1].Date.Format(models.DateLayout),
		MissingBusinessSample: []string{},
	}

	seen := make(map[string]bool, len(sorted))
	for _, bar := range sorted {
		key := bar.Date.Format(models.DateLayout)
		if seen[key] {
			report.DuplicateDateCount++
		}
		seen[key] = true

		if bar.Close == nil {
			report.MissingCloseCount++
		}
		if bar.Volume == nil {
			report.MissingVolumeCount++
		}
	}

	for day := sorted[0].Date; !day.After(sorted[len(sorted)-1].Date); day = day.AddDate(0, 0, 1) {
		if !isBusinessDay(day) {
			continue
		}
		if seen[day.Format(models.DateLayout)] {
			continue
		}
		report.MissingBusinessDays++
		if len(report.MissingBusinessSample) < maxMissingSample {
			report.MissingBusinessSample = append(report.MissingBusinessSample, day.Format(models.DateLayout))
		}
	}

	return report
}

func isBusinessDay(day time.Time) bool {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}
