// Package strategy drives the pattern recognizer and backtest engine over a
// full price history: bar-by-bar simulation after a warm-up period, signal
// filtering and ranking, and a brute-force sweep over pattern combinations.
package strategy

import (
	"fmt"

	"go.uber.org/zap"

	"trading-chart-go/internal/backtest"
	"trading-chart-go/internal/marketdata"
	"trading-chart-go/internal/patterns"
)

// DefaultWarmupBars is how many sessions the pattern strategies skip before
// trading, so the slowest indicators have stabilized.
const DefaultWarmupBars = 100

// Config holds the simulation parameters shared by every run over one series.
type Config struct {
	InitialCapital float64
	CommissionRate float64
	Slippage       float64
	WarmupBars     int
}

// Result is the output of one backtest run.
type Result struct {
	Metrics      backtest.Metrics
	EquityCurve  []backtest.EquityPoint
	Trades       []backtest.Trade
	PatternsUsed []patterns.SignalType
}

// Runner executes backtests over one immutable price history. The bar slice
// is shared read-only across runs, so concurrent RunPatternStrategy calls
// are safe: each run gets its own freshly constructed engine.
type Runner struct {
	logger *zap.Logger
	bars   []marketdata.Bar
	cfg    Config
}

// NewRunner creates a runner over the given history. The series must be
// strictly ordered by date; a malformed series is rejected here rather than
// producing silently wrong results.
func NewRunner(logger *zap.Logger, bars []marketdata.Bar, cfg Config) (*Runner, error) {
	if err := marketdata.ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("invalid price history: %w", err)
	}
	if cfg.WarmupBars <= 0 {
		cfg.WarmupBars = DefaultWarmupBars
	}
	// No capital means no cost model was configured either: adopt the
	// standard one wholesale. An explicit capital keeps the given costs,
	// including zero.
	if cfg.InitialCapital <= 0 {
		std := backtest.DefaultConfig()
		cfg.InitialCapital = std.InitialCapital
		cfg.CommissionRate = std.CommissionRate
		cfg.Slippage = std.Slippage
	}
	return &Runner{logger: logger, bars: bars, cfg: cfg}, nil
}

// Bars returns the price history the runner simulates over.
func (r *Runner) Bars() []marketdata.Bar {
	return r.bars
}

// RunPatternStrategy backtests a set of allowed pattern types. Each session
// after the warm-up: recognize signals on the history up to and including
// the session (never beyond it), keep those dated at the session with an
// allowed type and sufficient confidence, check stops, then execute the
// single highest-confidence survivor (first encountered wins ties). Any
// position still open after the last session is closed at its close price
// so the metrics are well-defined.
func (r *Runner) RunPatternStrategy(allowed []patterns.SignalType, positionSize, confidenceThreshold float64) Result {
	engine := backtest.NewEngine(r.logger, backtest.Config{
		InitialCapital: r.cfg.InitialCapital,
		CommissionRate: r.cfg.CommissionRate,
		Slippage:       r.cfg.Slippage,
	})

	allowedSet := make(map[patterns.SignalType]bool, len(allowed))
	for _, t := range allowed {
		allowedSet[t] = true
	}

	for i := r.cfg.WarmupBars; i < len(r.bars); i++ {
		bar := r.bars[i]

		recognizer := patterns.NewRecognizer(r.bars[:i+1])
		signals := recognizer.AnalyzeLatest()

		var best *patterns.Signal
		for j := range signals {
			s := &signals[j]
			if !allowedSet[s.Type] || s.Confidence < confidenceThreshold || !s.Date.Equal(bar.Date) {
				continue
			}
			if best == nil || s.Confidence > best.Confidence {
				best = s
			}
		}

		engine.CheckStops(bar.High, bar.Low, bar.Date)

		if best != nil {
			engine.ExecuteSignal(*best, bar.Close, bar.Date, positionSize)
		}

		engine.UpdateEquity(bar.Close, bar.Date)
	}

	lastBar := r.bars[len(r.bars)-1]
	if engine.HasOpenPosition() {
		engine.ClosePosition(lastBar.Close, lastBar.Date)
	}

	return Result{
		Metrics:      engine.Metrics(),
		EquityCurve:  engine.EquityCurve(),
		Trades:       engine.ClosedTrades(),
		PatternsUsed: allowed,
	}
}

// IndicatorRules selects which indicator-based entry rules the indicator
// strategy applies.
type IndicatorRules struct {
	MACrossover bool
	FastPeriod  int
	SlowPeriod  int
}

// indicatorWarmupBars is the shorter warm-up for the plain indicator
// strategy, which only needs the slow moving average.
const indicatorWarmupBars = 50

// RunIndicatorStrategy backtests direct indicator rules instead of
// recognized patterns. Currently the only rule is an SMA crossover, executed
// with confidence 0.8 synthetic signals and the same stop and equity
// lifecycle as the pattern strategy.
func (r *Runner) RunIndicatorStrategy(rules IndicatorRules, positionSize float64) Result {
	engine := backtest.NewEngine(r.logger, backtest.Config{
		InitialCapital: r.cfg.InitialCapital,
		CommissionRate: r.cfg.CommissionRate,
		Slippage:       r.cfg.Slippage,
	})

	fast := rules.FastPeriod
	if fast <= 0 {
		fast = patterns.FastMAPeriod
	}
	slow := rules.SlowPeriod
	if slow <= 0 {
		slow = patterns.SlowMAPeriod
	}

	recognizer := patterns.NewRecognizer(r.bars)
	var crossovers []patterns.Signal
	if rules.MACrossover {
		crossovers = recognizer.DetectMACrossover(fast, slow)
	}
	byDate := make(map[int64]patterns.Signal, len(crossovers))
	for _, s := range crossovers {
		byDate[s.Date.UnixNano()] = s
	}

	for i := indicatorWarmupBars; i < len(r.bars); i++ {
		bar := r.bars[i]

		engine.CheckStops(bar.High, bar.Low, bar.Date)

		if s, ok := byDate[bar.Date.UnixNano()]; ok {
			s.Confidence = 0.8
			engine.ExecuteSignal(s, bar.Close, bar.Date, positionSize)
		}

		engine.UpdateEquity(bar.Close, bar.Date)
	}

	lastBar := r.bars[len(r.bars)-1]
	if engine.HasOpenPosition() {
		engine.ClosePosition(lastBar.Close, lastBar.Date)
	}

	return Result{
		Metrics:     engine.Metrics(),
		EquityCurve: engine.EquityCurve(),
		Trades:      engine.ClosedTrades(),
	}
}
