package backtest

import (
	"time"

	"trading-chart-go/internal/patterns"
)

// Trade is one position. It is mutable while open (stop checks and the final
// close write the exit fields) and treated as immutable once archived to the
// closed ledger.
type Trade struct {
	EntryDate  time.Time
	EntryPrice float64
	ExitDate   time.Time
	ExitPrice  float64
	Quantity   float64
	Side       patterns.Side
	StopLoss   float64
	TakeProfit float64
	Commission float64
}

// IsOpen reports whether the trade has not been closed yet.
func (t *Trade) IsOpen() bool {
	return t.ExitDate.IsZero()
}

// PnL is the realized profit of a closed trade: (exit-entry)*quantity minus
// accumulated commission for a long, sign-flipped for a short. Open trades
// report zero.
func (t *Trade) PnL() float64 {
	if t.IsOpen() {
		return 0
	}
	if t.Side == patterns.SideBuy {
		return (t.ExitPrice-t.EntryPrice)*t.Quantity - t.Commission
	}
	return (t.EntryPrice-t.ExitPrice)*t.Quantity - t.Commission
}

// ReturnPct is the realized return of a closed trade as a percentage of the
// entry price, before commission.
func (t *Trade) ReturnPct() float64 {
	if t.IsOpen() || t.EntryPrice == 0 {
		return 0
	}
	if t.Side == patterns.SideBuy {
		return (t.ExitPrice - t.EntryPrice) / t.EntryPrice * 100
	}
	return (t.EntryPrice - t.ExitPrice) / t.EntryPrice * 100
}

// EquityPoint is one appended-per-session snapshot of portfolio value.
type EquityPoint struct {
	Date          time.Time
	Equity        float64
	Cash          float64
	OpenPositions int
}
