package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// FeatureRow is one engineered feature observation. Rows are emitted only
// for dates where the log return, rolling volatility and momentum windows
// are all fully populated; drawdown is always defined.
type FeatureRow struct {
	Date       time.Time
	Close      float64
	Volume     *float64
	LogReturn  float64
	RollingVol float64
	Momentum   float64
	Drawdown   float64
}

// RegimeRow is one regime score observation. RiskOffProb lies strictly in
// (0,1); rows are only produced where the normalization window is full and
// its standard deviation is nonzero.
type RegimeRow struct {
	Date        time.Time `json:"date"`
	ZScore      float64   `json:"z_vol"`
	RiskOffProb float64   `json:"risk_off_prob"`
}

type regimeRowJSON struct {
	Date        string  `json:"date"`
	ZScore      float64 `json:"z_vol"`
	RiskOffProb float64 `json:"risk_off_prob"`
}

// MarshalJSON renders the date as a calendar day, matching the feature
// series contract. Dates never carry a time component.
func (r RegimeRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(regimeRowJSON{
		Date:        r.Date.Format(DateLayout),
		ZScore:      r.ZScore,
		RiskOffProb: r.RiskOffProb,
	})
}

// UnmarshalJSON decodes a calendar-day regime row.
func (r *RegimeRow) UnmarshalJSON(data []byte) error {
	var row regimeRowJSON
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}
	date, err := time.Parse(DateLayout, row.Date)
	if err != nil {
		return fmt.Errorf("invalid regime row date %q: %w", row.Date, err)
	}
	*r = RegimeRow{Date: date, ZScore: row.ZScore, RiskOffProb: row.RiskOffProb}
	return nil
}
