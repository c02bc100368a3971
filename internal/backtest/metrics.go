package backtest

import "math"

// tradingDaysPerYear annualizes the Sharpe ratio of daily equity returns.
const tradingDaysPerYear = 252

// Metrics is a recomputed-on-demand projection of the closed-trade ledger
// and equity curve. WinRate, TotalReturn and MaxDrawdown are percentages.
// ProfitFactor is +Inf when there are no losing trades; display code must
// special-case it.
type Metrics struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	AvgWin        float64 `json:"avg_win"`
	AvgLoss       float64 `json:"avg_loss"`
	ProfitFactor  float64 `json:"profit_factor"`
	TotalReturn   float64 `json:"total_return"`
	SharpeRatio   float64 `json:"sharpe_ratio"`
	MaxDrawdown   float64 `json:"max_drawdown"`
}

// Metrics derives the performance snapshot from the engine's current state.
// It never mutates the engine, so repeated calls return identical results.
// With no closed trades every field is zero.
func (e *Engine) Metrics() Metrics {
	if len(e.closed) == 0 {
		return Metrics{}
	}

	var m Metrics
	m.TotalTrades = len(e.closed)

	var grossProfit, grossLoss float64
	for i := range e.closed {
		pnl := e.closed[i].PnL()
		if pnl > 0 {
			m.WinningTrades++
			grossProfit += pnl
		} else if pnl < 0 {
			m.LosingTrades++
			grossLoss += -pnl
		}
	}

	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	if m.WinningTrades > 0 {
		m.AvgWin = grossProfit / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = -grossLoss / float64(m.LosingTrades)
	}
	if grossLoss > 0 {
		m.ProfitFactor = grossProfit / grossLoss
	} else {
		m.ProfitFactor = math.Inf(1)
	}

	if len(e.equity) > 0 {
		finalEquity := e.equity[len(e.equity)-1].Equity
		m.TotalReturn = (finalEquity - e.cfg.InitialCapital) / e.cfg.InitialCapital * 100
		m.SharpeRatio = sharpeRatio(e.equity)
		m.MaxDrawdown = maxDrawdown(e.equity)
	}

	return m
}

// sharpeRatio annualizes mean/std of daily equity returns. Fewer than two
// returns, or a flat curve, yields 0 rather than NaN.
func sharpeRatio(equity []EquityPoint) float64 {
	returns := dailyReturns(equity)
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var ss float64
	for _, r := range returns {
		d := r - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(returns)-1)) // sample std

	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(tradingDaysPerYear)
}

// maxDrawdown is the deepest peak-to-trough decline of the equity curve as a
// negative percentage.
func maxDrawdown(equity []EquityPoint) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, p := range equity {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := p.Equity/peak - 1
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst * 100
}

func dailyReturns(equity []EquityPoint) []float64 {
	if len(equity) < 2 {
		return nil
	}
	out := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev == 0 {
			continue
		}
		out = append(out, equity[i].Equity/prev-1)
	}
	return out
}
