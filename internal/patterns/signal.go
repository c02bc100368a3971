package patterns

import "time"

// SignalType tags a discrete trading signal emitted by the recognizer.
type SignalType string

const (
	MACrossoverBuy       SignalType = "MA_CROSSOVER_BUY"
	MACrossoverSell      SignalType = "MA_CROSSOVER_SELL"
	RSIBullishDivergence SignalType = "RSI_BULLISH_DIVERGENCE"
	RSIBearishDivergence SignalType = "RSI_BEARISH_DIVERGENCE"
	ResistanceBreakout   SignalType = "RESISTANCE_BREAKOUT"
	SupportBreakdown     SignalType = "SUPPORT_BREAKDOWN"
	HammerBullish        SignalType = "HAMMER_BULLISH"
	ShootingStarBearish  SignalType = "SHOOTING_STAR_BEARISH"
	BullishEngulfing     SignalType = "BULLISH_ENGULFING"
	BearishEngulfing     SignalType = "BEARISH_ENGULFING"
)

// Side is the trade direction a signal calls for.
type Side int

const (
	SideNone Side = iota
	SideBuy
	SideSell
)

// String returns the order-side name.
func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "NONE"
	}
}

var signalSides = map[SignalType]Side{
	MACrossoverBuy:       SideBuy,
	MACrossoverSell:      SideSell,
	RSIBullishDivergence: SideBuy,
	RSIBearishDivergence: SideSell,
	ResistanceBreakout:   SideBuy,
	SupportBreakdown:     SideSell,
	HammerBullish:        SideBuy,
	ShootingStarBearish:  SideSell,
	BullishEngulfing:     SideBuy,
	BearishEngulfing:     SideSell,
}

// Side returns the trade direction for the signal type. Unknown types map to
// SideNone and are ignored by the backtest engine.
func (t SignalType) Side() Side {
	return signalSides[t]
}

// AllSignalTypes returns the fixed signal vocabulary, in a stable order, for
// combination sweeps.
func AllSignalTypes() []SignalType {
	return []SignalType{
		MACrossoverBuy,
		MACrossoverSell,
		RSIBullishDivergence,
		RSIBearishDivergence,
		ResistanceBreakout,
		SupportBreakdown,
		HammerBullish,
		ShootingStarBearish,
		BullishEngulfing,
		BearishEngulfing,
	}
}

// Signal is one discrete trading signal. Signals are immutable once created.
type Signal struct {
	Type       SignalType
	Date       time.Time
	Price      float64
	Confidence float64
	Details    string
}
