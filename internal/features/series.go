package features

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourusername/aegisquant/internal/models"
)

// Series is an engineered feature table. The window sizes are part of the
// value: downstream consumers key off the windowed column names
// (vol_20/mom_60 under the defaults), so rows serialize with dynamic keys.
type Series struct {
	Symbol    string
	VolWindow int
	MomWindow int
	Rows      []models.FeatureRow
}

// VolColumn returns the rolling volatility column name, e.g. "vol_20".
func (s *Series) VolColumn() string {
	return fmt.Sprintf("vol_%d", s.VolWindow)
}

// MomColumn returns the momentum column name, e.g. "mom_60".
func (s *Series) MomColumn() string {
	return fmt.Sprintf("mom_%d", s.MomWindow)
}

type seriesEnvelope struct {
	Symbol    string                   `json:"symbol,omitempty"`
	VolWindow int                      `json:"vol_window"`
	MomWindow int                      `json:"mom_window"`
	Rows      []map[string]interface{} `json:"rows"`
}

// Records renders rows as flat records keyed by the contract column
// names: date, close, volume, log_return, vol_<w>, mom_<w>, drawdown.
func (s *Series) Records() []map[string]interface{} {
	records := make([]map[string]interface{}, 0, len(s.Rows))
	volCol := s.VolColumn()
	momCol := s.MomColumn()
	for _, row := range s.Rows {
		record := map[string]interface{}{
			"date":       row.Date.Format(models.DateLayout),
			"close":      row.Close,
			"log_return": row.LogReturn,
			volCol:       row.RollingVol,
			momCol:       row.Momentum,
			"drawdown":   row.Drawdown,
		}
		if row.Volume != nil {
			record["volume"] = *row.Volume
		}
		records = append(records, record)
	}
	return records
}

// MarshalJSON renders rows as flat records via Records.
func (s *Series) MarshalJSON() ([]byte, error) {
	return json.Marshal(seriesEnvelope{
		Symbol:    s.Symbol,
		VolWindow: s.VolWindow,
		MomWindow: s.MomWindow,
		Rows:      s.Records(),
	})
}

// UnmarshalJSON decodes a snapshot payload back into a Series.
func (s *Series) UnmarshalJSON(data []byte) error {
	var env seriesEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	out := Series{
		Symbol:    env.Symbol,
		VolWindow: env.VolWindow,
		MomWindow: env.MomWindow,
		Rows:      make([]models.FeatureRow, 0, len(env.Rows)),
	}
	volCol := out.VolColumn()
	momCol := out.MomColumn()
	for _, record := range env.Rows {
		row, err := decodeRow(record, volCol, momCol)
		if err != nil {
			return err
		}
		out.Rows = append(out.Rows, row)
	}
	*s = out
	return nil
}

func decodeRow(record map[string]interface{}, volCol, momCol string) (models.FeatureRow, error) {
	var row models.FeatureRow

	rawDate, ok := record["date"].(string)
	if !ok {
		return row, fmt.Errorf("feature row missing date")
	}
	date, err := time.Parse(models.DateLayout, rawDate)
	if err != nil {
		return row, fmt.Errorf("invalid feature row date %q: %w", rawDate, err)
	}
	row.Date = date

	for _, field := range []struct {
		key  string
		dest *float64
	}{
		{"close", &row.Close},
		{"log_return", &row.LogReturn},
		{volCol, &row.RollingVol},
		{momCol, &row.Momentum},
		{"drawdown", &row.Drawdown},
	} {
		value, ok := record[field.key].(float64)
		if !ok {
			return row, fmt.Errorf("feature row %s missing column %s", rawDate, field.key)
		}
		*field.dest = value
	}
	if value, ok := record["volume"].(float64); ok {
		row.Volume = &value
	}
	return row, nil
}
