package models

import (
	"sort"
	"time"
)

// DateLayout is the calendar-day format used across all row types.
const DateLayout = "2006-01-02"

// PriceBar represents one raw daily OHLCV bar for a symbol. Dates are
// calendar days with no time component; the source does not guarantee
// uniqueness, so duplicates must be checked rather than assumed.
type PriceBar struct {
	Date     time.Time `json:"date"`
	Open     *float64  `json:"open,omitempty"`
	High     *float64  `json:"high,omitempty"`
	Low      *float64  `json:"low,omitempty"`
	Close    *float64  `json:"close"`
	AdjClose *float64  `json:"adj_close,omitempty"`
	Volume   *float64  `json:"volume,omitempty"`
}

// SortBarsByDate returns a date-ascending copy of bars. The input slice is
// never reordered in place so concurrent callers can share one history.
func SortBarsByDate(bars []PriceBar) []PriceBar {
	sorted := make([]PriceBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}
