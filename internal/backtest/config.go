package backtest

// Defaults for the regime-timed simulation.
const (
	DefaultThreshold = 0.7
	DefaultCostBps   = 5.0
	DefaultLimit     = 1500

	MaxCostBps = 200.0
	MaxLimit   = 5000
)

// Config holds the backtest parameters. The backtest threshold is
// configurable independently of the statistics threshold.
type Config struct {
	// Threshold is the risk-off probability at or above which the
	// simulated position is flat.
	Threshold float64

	// CostBps is the per-trade transaction cost in basis points.
	CostBps float64

	// Limit is the number of trailing equity points emitted. Summary
	// statistics always cover the full joined series regardless.
	Limit int
}

// DefaultConfig returns the reference parameterization.
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold, CostBps: DefaultCostBps, Limit: DefaultLimit}
}

// Normalize clamps out-of-range parameters instead of rejecting them.
// This is a research-exploration surface: resilience to operator error is
// preferred over hard failure.
func (c Config) Normalize() Config {
	if c.Threshold < 0 {
		c.Threshold = 0
	}
	if c.Threshold > 1 {
		c.Threshold = 1
	}
	if c.CostBps < 0 {
		c.CostBps = 0
	}
	if c.CostBps > MaxCostBps {
		c.CostBps = MaxCostBps
	}
	if c.Limit < 1 {
		c.Limit = 1
	}
	if c.Limit > MaxLimit {
		c.Limit = MaxLimit
	}
	return c
}
