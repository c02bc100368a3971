package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trading-chart-go/internal/marketdata"
	"trading-chart-go/internal/patterns"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n-1)
}

func flatBar(n int, price float64) marketdata.Bar {
	return marketdata.Bar{Date: day(n), Open: price, High: price, Low: price, Close: price, Volume: 1000}
}

// engulfingSeries is 106 sessions of quiet tape with a single bullish
// engulfing pattern on session 103, after the 100-bar warm-up. The tail
// sessions are zero-range so no further candlestick signals fire and the
// position's stop and target are never touched.
func engulfingSeries() []marketdata.Bar {
	var bars []marketdata.Bar
	for n := 1; n <= 101; n++ {
		bars = append(bars, flatBar(n, 100))
	}
	bars = append(bars, marketdata.Bar{Date: day(102), Open: 100.5, High: 100.6, Low: 99.9, Close: 100})
	bars = append(bars, marketdata.Bar{Date: day(103), Open: 99.9, High: 101.0, Low: 99.8, Close: 100.8})
	for n := 104; n <= 106; n++ {
		bars = append(bars, flatBar(n, 100.3))
	}
	return bars
}

func newTestRunner(t *testing.T, bars []marketdata.Bar) *Runner {
	t.Helper()
	r, err := NewRunner(zap.NewNop(), bars, Config{InitialCapital: 100000})
	require.NoError(t, err)
	return r
}

func TestNewRunnerRejectsUnorderedBars(t *testing.T) {
	bars := []marketdata.Bar{flatBar(2, 100), flatBar(1, 100)}
	_, err := NewRunner(zap.NewNop(), bars, Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strictly increasing")
}

func TestNewRunnerRejectsEmptyHistory(t *testing.T) {
	_, err := NewRunner(zap.NewNop(), nil, Config{})
	assert.Error(t, err)
}

func TestRunPatternStrategyEmptyPatternList(t *testing.T) {
	r := newTestRunner(t, engulfingSeries())

	result := r.RunPatternStrategy(nil, 0.1, 0.7)

	assert.Equal(t, 0, result.Metrics.TotalTrades)
	assert.Equal(t, 0.0, result.Metrics.TotalReturn)
	assert.Empty(t, result.Trades)
	// One equity point per simulated session after warm-up.
	assert.Len(t, result.EquityCurve, 6)
}

func TestRunPatternStrategyTradesAndForceCloses(t *testing.T) {
	r := newTestRunner(t, engulfingSeries())

	result := r.RunPatternStrategy(
		[]patterns.SignalType{patterns.BullishEngulfing}, 0.1, 0.7)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, patterns.SideBuy, trade.Side)
	assert.True(t, trade.EntryDate.Equal(day(103)))
	assert.InDelta(t, 100.8, trade.EntryPrice, 1e-9)

	// Still open at series end: closed at the final session's close.
	assert.True(t, trade.ExitDate.Equal(day(106)))
	assert.InDelta(t, 100.3, trade.ExitPrice, 1e-9)

	assert.Equal(t, 1, result.Metrics.TotalTrades)
	assert.Equal(t, []patterns.SignalType{patterns.BullishEngulfing}, result.PatternsUsed)
}

func TestRunPatternStrategyRespectsConfidenceThreshold(t *testing.T) {
	r := newTestRunner(t, engulfingSeries())

	// Engulfing confidence is 0.7; a higher bar filters it out.
	result := r.RunPatternStrategy(
		[]patterns.SignalType{patterns.BullishEngulfing}, 0.1, 0.75)

	assert.Empty(t, result.Trades)
	assert.Equal(t, 0, result.Metrics.TotalTrades)
}

func TestRunPatternStrategyEquityMatchesCashPlusPosition(t *testing.T) {
	r := newTestRunner(t, engulfingSeries())

	result := r.RunPatternStrategy(
		[]patterns.SignalType{patterns.BullishEngulfing}, 0.1, 0.7)

	for _, p := range result.EquityCurve {
		assert.LessOrEqual(t, p.OpenPositions, 1, "never more than one open position")
		if p.OpenPositions == 0 {
			assert.InDelta(t, p.Cash, p.Equity, 1e-9)
		} else {
			assert.Greater(t, p.Equity, p.Cash)
		}
	}
}

func TestRunIndicatorStrategyMACrossover(t *testing.T) {
	var bars []marketdata.Bar
	n := 1
	for ; n <= 60; n++ {
		bars = append(bars, flatBar(n, 100))
	}
	for ; n <= 75; n++ {
		bars = append(bars, flatBar(n, 130))
	}
	r := newTestRunner(t, bars)

	result := r.RunIndicatorStrategy(IndicatorRules{MACrossover: true}, 0.1)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, patterns.SideBuy, trade.Side)
	assert.True(t, trade.EntryDate.Equal(day(61)))
	assert.Equal(t, 1, result.Metrics.TotalTrades)
}

func TestParseSignalTypes(t *testing.T) {
	t.Run("Valid names", func(t *testing.T) {
		got, err := ParseSignalTypes([]string{"MA_CROSSOVER_BUY", "BULLISH_ENGULFING"})
		require.NoError(t, err)
		assert.Equal(t, []patterns.SignalType{patterns.MACrossoverBuy, patterns.BullishEngulfing}, got)
	})

	t.Run("Unknown name", func(t *testing.T) {
		_, err := ParseSignalTypes([]string{"DOUBLE_TOP"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DOUBLE_TOP")
	})
}
