// Package backtest simulates a single-position trading account over a daily
// signal stream: at most one open position at any time, fixed stop-loss and
// take-profit bands, slippage and commission on both sides of every fill.
package backtest

import (
	"math"
	"time"

	"go.uber.org/zap"

	"trading-chart-go/internal/patterns"
)

const (
	DefaultInitialCapital = 100000
	DefaultCommissionRate = 0.001  // 0.1%
	DefaultSlippage       = 0.0005 // 0.05%

	longStopLoss    = 0.98
	longTakeProfit  = 1.03
	shortStopLoss   = 1.02
	shortTakeProfit = 0.97
)

// Config holds the cost model for a simulation. Zero commission and slippage
// are honored as-is; only a missing initial capital falls back to the
// default.
type Config struct {
	InitialCapital float64
	CommissionRate float64
	Slippage       float64
}

// DefaultConfig returns the standard cost model.
func DefaultConfig() Config {
	return Config{
		InitialCapital: DefaultInitialCapital,
		CommissionRate: DefaultCommissionRate,
		Slippage:       DefaultSlippage,
	}
}

// Engine is a deterministic single-position simulator. One engine serves one
// run; construct a fresh engine (or call Reset) before every independent
// simulation, and never share an engine across concurrent runs.
type Engine struct {
	logger *zap.Logger
	cfg    Config

	cash     float64
	position *Trade
	closed   []Trade
	equity   []EquityPoint
}

// NewEngine creates a new backtest engine.
func NewEngine(logger *zap.Logger, cfg Config) *Engine {
	if cfg.InitialCapital <= 0 {
		cfg.InitialCapital = DefaultInitialCapital
	}
	return &Engine{
		logger: logger,
		cfg:    cfg,
		cash:   cfg.InitialCapital,
	}
}

// Reset restores the engine to its initial state so it can run another
// independent simulation.
func (e *Engine) Reset() {
	e.cash = e.cfg.InitialCapital
	e.position = nil
	e.closed = nil
	e.equity = nil
}

// HasOpenPosition reports whether a position is currently open.
func (e *Engine) HasOpenPosition() bool {
	return e.position != nil
}

// OpenPosition returns the open trade, or nil when flat.
func (e *Engine) OpenPosition() *Trade {
	return e.position
}

// ClosedTrades returns the closed-trade ledger in close order.
func (e *Engine) ClosedTrades() []Trade {
	return e.closed
}

// EquityCurve returns the per-session equity snapshots in append order.
func (e *Engine) EquityCurve() []EquityPoint {
	return e.equity
}

// Cash returns the current cash balance.
func (e *Engine) Cash() float64 {
	return e.cash
}

// ExecuteSignal acts on one trading signal at the given market price. An
// opposite-side open position is closed first; a new position only opens
// when flat. Signals whose type carries no direction, and entries whose
// affordable quantity floors to zero, are silent no-ops.
func (e *Engine) ExecuteSignal(sig patterns.Signal, price float64, date time.Time, positionSize float64) {
	side := sig.Type.Side()
	if side == patterns.SideNone {
		return
	}

	if e.position != nil && e.position.Side != side {
		e.ClosePosition(price, date)
	}

	if e.position != nil {
		return
	}

	tradeValue := e.cash * positionSize
	quantity := math.Floor(tradeValue / price)
	if quantity <= 0 {
		return
	}

	var entryPrice float64
	if side == patterns.SideBuy {
		entryPrice = price * (1 + e.cfg.Slippage)
	} else {
		entryPrice = price * (1 - e.cfg.Slippage)
	}

	commission := tradeValue * e.cfg.CommissionRate

	trade := &Trade{
		EntryDate:  date,
		EntryPrice: entryPrice,
		Quantity:   quantity,
		Side:       side,
		Commission: commission,
	}
	if side == patterns.SideBuy {
		trade.StopLoss = entryPrice * longStopLoss
		trade.TakeProfit = entryPrice * longTakeProfit
	} else {
		trade.StopLoss = entryPrice * shortStopLoss
		trade.TakeProfit = entryPrice * shortTakeProfit
	}

	e.position = trade
	e.cash -= tradeValue + commission

	e.logger.Debug("Opened position",
		zap.String("side", side.String()),
		zap.String("signal", string(sig.Type)),
		zap.Float64("quantity", quantity),
		zap.Float64("entry_price", entryPrice))
}

// CheckStops closes the open position when the session's range breaches its
// stop-loss or take-profit level. The stop is checked first; a bar that gaps
// through both levels fills at the stop.
func (e *Engine) CheckStops(high, low float64, date time.Time) {
	if e.position == nil {
		return
	}
	t := e.position

	if t.Side == patterns.SideBuy {
		if low <= t.StopLoss {
			e.ClosePosition(t.StopLoss, date)
			return
		}
		if high >= t.TakeProfit {
			e.ClosePosition(t.TakeProfit, date)
			return
		}
		return
	}

	// short
	if high >= t.StopLoss {
		e.ClosePosition(t.StopLoss, date)
		return
	}
	if low <= t.TakeProfit {
		e.ClosePosition(t.TakeProfit, date)
	}
}

// ClosePosition closes the open position at the given market price, applying
// slippage against the trader and commission on the proceeds, and archives
// the trade to the closed ledger. No-op when flat.
func (e *Engine) ClosePosition(price float64, date time.Time) {
	if e.position == nil {
		return
	}
	t := e.position

	var exitPrice float64
	if t.Side == patterns.SideBuy {
		exitPrice = price * (1 - e.cfg.Slippage)
	} else {
		exitPrice = price * (1 + e.cfg.Slippage)
	}

	t.ExitDate = date
	t.ExitPrice = exitPrice

	proceeds := t.Quantity * exitPrice
	commission := proceeds * e.cfg.CommissionRate
	t.Commission += commission
	e.cash += proceeds - commission

	e.closed = append(e.closed, *t)
	e.position = nil

	e.logger.Debug("Closed position",
		zap.String("side", t.Side.String()),
		zap.Float64("quantity", t.Quantity),
		zap.Float64("exit_price", exitPrice),
		zap.Float64("pnl", e.closed[len(e.closed)-1].PnL()))
}

// UpdateEquity appends one equity point valuing the account at the given
// market price. An open long is marked at quantity*price; an open short at
// quantity*(2*entry - price), so its value moves one-for-one against price.
func (e *Engine) UpdateEquity(price float64, date time.Time) {
	equity := e.cash
	openCount := 0
	if e.position != nil {
		openCount = 1
		if e.position.Side == patterns.SideBuy {
			equity += e.position.Quantity * price
		} else {
			equity += e.position.Quantity * (2*e.position.EntryPrice - price)
		}
	}

	e.equity = append(e.equity, EquityPoint{
		Date:          date,
		Equity:        equity,
		Cash:          e.cash,
		OpenPositions: openCount,
	})
}
