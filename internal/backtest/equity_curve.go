package backtest

import (
	"bytes"
	"strconv"
)

// EquityPoint carries one day of the three simulated equity curves plus
// the position held and whether a trade fired that day.
type EquityPoint struct {
	Date        string  `json:"date"`
	BuyHold     float64 `json:"buy_hold_equity"`
	RegimeGross float64 `json:"regime_gross_equity"`
	RegimeNet   float64 `json:"regime_net_equity"`
	Position    int     `json:"position"`
	TradeFlag   int     `json:"trade_flag"`
}

// EquityCurve is a date-ascending series of equity points.
type EquityCurve []EquityPoint

// Tail returns the trailing limit points. The full curve is retained by
// the caller for summary statistics; only the emitted window shrinks.
func (e EquityCurve) Tail(limit int) EquityCurve {
	if limit >= len(e) {
		return e
	}
	return e[len(e)-limit:]
}

// ToCSV exports the curve for spreadsheets.
func (e EquityCurve) ToCSV() string {
	var buf bytes.Buffer
	buf.WriteString("date,buy_hold_equity,regime_gross_equity,regime_net_equity,position,trade_flag\n")
	for _, point := range e {
		buf.WriteString(point.Date)
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.BuyHold))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.RegimeGross))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.RegimeNet))
		buf.WriteString(",")
		buf.WriteString(strconv.Itoa(point.Position))
		buf.WriteString(",")
		buf.WriteString(strconv.Itoa(point.TradeFlag))
		buf.WriteString("\n")
	}
	return buf.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
