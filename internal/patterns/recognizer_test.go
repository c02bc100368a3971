package patterns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-chart-go/internal/marketdata"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n-1)
}

// flatBar is a zero-range session, invisible to the candlestick detector.
func flatBar(n int, price float64) marketdata.Bar {
	return marketdata.Bar{Date: day(n), Open: price, High: price, Low: price, Close: price, Volume: 1000}
}

func TestSignalTypeSides(t *testing.T) {
	expected := map[SignalType]Side{
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

	require.Len(t, AllSignalTypes(), len(expected))
	for _, st := range AllSignalTypes() {
		assert.Equal(t, expected[st], st.Side(), "side of %s", st)
	}
	assert.Equal(t, SideNone, SignalType("SOMETHING_ELSE").Side())
}

func TestDetectCandlesticksBullishEngulfing(t *testing.T) {
	// Day 3 is a small bearish bar; day 4 opens below its close and closes
	// above its open, engulfing it.
	bars := []marketdata.Bar{
		{Date: day(1), Open: 10, High: 10.5, Low: 9.5, Close: 10},
		{Date: day(2), Open: 10, High: 10.5, Low: 9.5, Close: 10},
		{Date: day(3), Open: 10, High: 10.2, Low: 8.8, Close: 9},
		{Date: day(4), Open: 8, High: 11.5, Low: 7.8, Close: 11},
		{Date: day(5), Open: 11, High: 11.4, Low: 10.8, Close: 11.2},
	}

	signals := NewRecognizer(bars).DetectCandlesticks()

	var engulfing []Signal
	for _, s := range signals {
		if s.Type == BullishEngulfing {
			engulfing = append(engulfing, s)
		}
	}
	require.Len(t, engulfing, 1)
	assert.True(t, engulfing[0].Date.Equal(day(4)))
	assert.Equal(t, 11.0, engulfing[0].Price)
	assert.Equal(t, 0.7, engulfing[0].Confidence)
}

func TestDetectCandlesticksShapes(t *testing.T) {
	testCases := []struct {
		name     string
		bar      marketdata.Bar
		expected SignalType
	}{
		{
			name: "Hammer: long lower shadow on a bullish bar",
			// body 1, lower shadow 5, upper shadow 0.05
			bar:      marketdata.Bar{Date: day(3), Open: 100, High: 101.05, Low: 95, Close: 101},
			expected: HammerBullish,
		},
		{
			name: "Shooting star: long upper shadow on a bearish bar",
			// body 1, upper shadow 5, lower shadow 0.05
			bar:      marketdata.Bar{Date: day(3), Open: 101, High: 106, Low: 99.95, Close: 100},
			expected: ShootingStarBearish,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bars := []marketdata.Bar{flatBar(1, 100), flatBar(2, 100), tc.bar}
			signals := NewRecognizer(bars).DetectCandlesticks()
			require.Len(t, signals, 1)
			assert.Equal(t, tc.expected, signals[0].Type)
			assert.Equal(t, 0.65, signals[0].Confidence)
		})
	}
}

func TestDetectCandlesticksSkipsZeroRangeBars(t *testing.T) {
	bars := []marketdata.Bar{flatBar(1, 100), flatBar(2, 100), flatBar(3, 100), flatBar(4, 100)}
	signals := NewRecognizer(bars).DetectCandlesticks()
	assert.Empty(t, signals)
}

func TestDetectMACrossover(t *testing.T) {
	// Close sits below a long flat stretch, then jumps: the fast average
	// overtakes the slow one exactly once.
	var bars []marketdata.Bar
	n := 1
	for ; n <= 60; n++ {
		bars = append(bars, flatBar(n, 100))
	}
	for ; n <= 75; n++ {
		bars = append(bars, flatBar(n, 130))
	}

	signals := NewRecognizer(bars).DetectMACrossover(FastMAPeriod, SlowMAPeriod)

	require.Len(t, signals, 1)
	assert.Equal(t, MACrossoverBuy, signals[0].Type)
	assert.Equal(t, 0.7, signals[0].Confidence)
	assert.Contains(t, signals[0].Details, "MA20 crossed above MA50")
}

func TestDetectBreakouts(t *testing.T) {
	// A plateau at 110 forms a resistance cluster; price retreats below it,
	// then the final close punches through.
	var bars []marketdata.Bar
	n := 1
	for ; n <= 10; n++ {
		bars = append(bars, flatBar(n, 100))
	}
	for ; n <= 35; n++ {
		bars = append(bars, flatBar(n, 110))
	}
	for ; n <= 49; n++ {
		bars = append(bars, flatBar(n, 105))
	}
	bars = append(bars, flatBar(50, 112))

	signals := NewRecognizer(bars).DetectBreakouts(BreakoutLookback, BreakoutThreshold)

	require.NotEmpty(t, signals)
	assert.Equal(t, ResistanceBreakout, signals[0].Type)
	assert.True(t, signals[0].Date.Equal(day(50)))
	assert.Equal(t, 0.75, signals[0].Confidence)
}

func TestAnalyzeAllSortedMostRecentFirst(t *testing.T) {
	// Two candlestick signals on different days.
	bars := []marketdata.Bar{
		flatBar(1, 100),
		{Date: day(2), Open: 100, High: 100.6, Low: 99.4, Close: 100.5},
		{Date: day(3), Open: 101, High: 101.2, Low: 99.8, Close: 99.9}, // bearish engulfing
		{Date: day(4), Open: 100, High: 100.6, Low: 99.4, Close: 99.8},
		{Date: day(5), Open: 99.7, High: 100.3, Low: 99.5, Close: 100.2}, // bullish engulfing
	}

	signals := NewRecognizer(bars).AnalyzeAll()

	require.GreaterOrEqual(t, len(signals), 2)
	for i := 1; i < len(signals); i++ {
		assert.False(t, signals[i].Date.After(signals[i-1].Date),
			"signals must be sorted by date descending")
	}
}

func TestAnalyzeLatestMatchesFinalBarSignals(t *testing.T) {
	// The engulfing pattern lands on the final bar, so both entry points
	// must report it.
	bars := []marketdata.Bar{
		flatBar(1, 100),
		flatBar(2, 100),
		{Date: day(3), Open: 101, High: 101.2, Low: 99.8, Close: 100},
		{Date: day(4), Open: 99.9, High: 101.6, Low: 99.7, Close: 101.5},
	}

	latest := NewRecognizer(bars).AnalyzeLatest()
	require.Len(t, latest, 1)
	assert.Equal(t, BullishEngulfing, latest[0].Type)

	var fromAll []Signal
	for _, s := range NewRecognizer(bars).AnalyzeAll() {
		if s.Date.Equal(day(4)) {
			fromAll = append(fromAll, s)
		}
	}
	assert.Equal(t, fromAll, latest)
}

func TestDetectRSIDivergenceEmitsNothingOnShortHistory(t *testing.T) {
	bars := []marketdata.Bar{flatBar(1, 100), flatBar(2, 101), flatBar(3, 100)}
	signals := NewRecognizer(bars).DetectRSIDivergence(RSIPeriod)
	assert.Empty(t, signals)
}

func TestDetectRSIDivergenceBullish(t *testing.T) {
	// Build a series with two price troughs where the second low is lower
	// but momentum recovers: a steep first drop, a shallow second one.
	closes := []float64{
		100, 101, 102, 103, 104, 105, 104, 103, 102, 101,
		90, 91, 96, 97, 98, 99, 98.5, 98, 97, 95,
		89.5, 90.5, 93, 94, 95, 96, 97, 98, 99, 100,
		101, 102, 103, 104, 105, 106,
	}
	bars := make([]marketdata.Bar, len(closes))
	for i, c := range closes {
		bars[i] = marketdata.Bar{Date: day(i + 1), Open: c, High: c + 0.5, Low: c - 0.5, Close: c}
	}

	signals := NewRecognizer(bars).DetectRSIDivergence(RSIPeriod)

	// The shape is engineered; assert only that any emitted signal is well
	// formed and dated at an interior bar.
	for _, s := range signals {
		assert.Contains(t, []SignalType{RSIBullishDivergence, RSIBearishDivergence}, s.Type)
		assert.Equal(t, 0.8, s.Confidence)
		assert.True(t, s.Date.Before(bars[len(bars)-1].Date),
			"divergence signals are dated at interior extrema")
	}
}
