// Package backtest simulates buy-and-hold versus regime-timed equity
// curves, gross and net of transaction costs.
package backtest

import (
	"fmt"

	"github.com/yourusername/aegisquant/internal/align"
	"github.com/yourusername/aegisquant/internal/models"
)

// Result is the full output of one simulation. Points hold only the
// trailing Config.Limit rows; every summary covers the full joined series.
type Result struct {
	Threshold     float64       `json:"threshold"`
	CostBps       float64       `json:"cost_bps"`
	SampleCount   int           `json:"sample_count"`
	TradeCount    int           `json:"trade_count"`
	TradesPerYear float64       `json:"trades_per_year"`
	CostDrag      float64       `json:"cost_drag"`
	BuyHold       Summary       `json:"buy_hold"`
	RegimeGross   Summary       `json:"regime_gross"`
	RegimeNet     Summary       `json:"regime_net"`
	Points        []EquityPoint `json:"points"`
}

// Run simulates the regime-timed strategy over the inner join of the two
// series. The position for day i is decided from day i's own already-known
// signal and applied to day i's realized return: being positioned coming
// into the day on the prior close's signal. This same-day convention is
// deliberately different from the forward-return pairing used by the
// statistics engine.
func Run(feats []models.FeatureRow, regimes []models.RegimeRow, cfg Config) (*Result, error) {
	cfg = cfg.Normalize()

	joined, err := align.InnerJoin(feats, regimes)
	if err != nil {
		return nil, fmt.Errorf("joining features and regimes: %w", err)
	}
	n := len(joined)
	cost := cfg.CostBps / 10000.0

	buyHold := make([]float64, n)
	gross := make([]float64, n)
	net := make([]float64, n)
	curve := make(EquityCurve, n)

	eqBH, eqGross, eqNet := 1.0, 1.0, 1.0
	prevPos := 0
	trades := 0
	for i := 0; i < n; i++ {
		ret := 0.0
		if i > 0 {
			ret = joined[i].Close/joined[i-1].Close - 1
		}
		pos := 0
		if joined[i].RiskOffProb < cfg.Threshold {
			pos = 1
		}
		traded := 0
		if i > 0 && pos != prevPos {
			traded = 1
			trades++
		}
		prevPos = pos

		eqBH *= 1 + ret
		strategyRet := ret * float64(pos)
		eqGross *= 1 + strategyRet
		if traded == 1 {
			eqNet *= 1 + strategyRet - cost
		} else {
			eqNet *= 1 + strategyRet
		}

		buyHold[i] = eqBH
		gross[i] = eqGross
		net[i] = eqNet
		curve[i] = EquityPoint{
			Date:        joined[i].Date,
			BuyHold:     eqBH,
			RegimeGross: eqGross,
			RegimeNet:   eqNet,
			Position:    pos,
			TradeFlag:   traded,
		}
	}

	years := float64(n) / tradingDaysPerYear
	result := &Result{
		Threshold:   cfg.Threshold,
		CostBps:     cfg.CostBps,
		SampleCount: n,
		TradeCount:  trades,
		CostDrag:    gross[n-1] - net[n-1],
		BuyHold:     Summarize(buyHold),
		RegimeGross: Summarize(gross),
		RegimeNet:   Summarize(net),
		Points:      curve.Tail(cfg.Limit),
	}
	if years > 0 {
		result.TradesPerYear = float64(trades) / years
	}
	return result, nil
}
