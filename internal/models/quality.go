package models

// QualityReport summarizes basic sanity checks over a raw price history.
// Business days are naive Monday-Friday; no holiday calendar is consulted.
type QualityReport struct {
	OK                     bool     `json:"ok"`
	Error                  string   `json:"error,omitempty"`
	RowCount               int      `json:"row_count"`
	FirstDate              string   `json:"first_date,omitempty"`
	LastDate               string   `json:"last_date,omitempty"`
	DuplicateDateCount     int      `json:"duplicate_date_count"`
	MissingBusinessDays    int      `json:"missing_business_day_count"`
	MissingBusinessSample  []string `json:"missing_business_day_sample"`
	MissingCloseCount      int      `json:"missing_close_count"`
	MissingVolumeCount     int      `json:"missing_volume_count"`
}
