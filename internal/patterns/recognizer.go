// Package patterns detects discrete trading signals in daily OHLCV history:
// moving-average crossovers, RSI divergences, support/resistance breakouts
// and single-bar candlestick patterns. Each detector assigns its signals a
// fixed confidence used downstream for ranking.
package patterns

import (
	"fmt"
	"math"
	"sort"

	"trading-chart-go/internal/indicators"
	"trading-chart-go/internal/marketdata"
)

// Detector defaults. Confidences are static detector scores, not calibrated
// probabilities.
const (
	FastMAPeriod = 20
	SlowMAPeriod = 50
	RSIPeriod    = 14
	ExtremaOrder = 5

	BreakoutLookback  = 50
	BreakoutThreshold = 0.02
	LevelWindow       = 20
	LevelCount        = 3

	crossoverConfidence  = 0.7
	divergenceConfidence = 0.8
	breakoutConfidence   = 0.75
	hammerConfidence     = 0.65
	starConfidence       = 0.65
	engulfingConfidence  = 0.7
)

// Recognizer scans a bar series for trading signals. The series must only
// reach up to the session under analysis; the recognizer never looks past
// the last bar it is given.
type Recognizer struct {
	bars []marketdata.Bar
}

// NewRecognizer creates a recognizer over the given history. The slice is
// read, never mutated.
func NewRecognizer(bars []marketdata.Bar) *Recognizer {
	return &Recognizer{bars: bars}
}

// AnalyzeAll runs every detector and returns the combined signals sorted by
// date descending (most recent first).
func (r *Recognizer) AnalyzeAll() []Signal {
	var all []Signal
	all = append(all, r.DetectMACrossover(FastMAPeriod, SlowMAPeriod)...)
	all = append(all, r.DetectRSIDivergence(RSIPeriod)...)
	all = append(all, r.DetectBreakouts(BreakoutLookback, BreakoutThreshold)...)
	all = append(all, r.DetectCandlesticks()...)

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.After(all[j].Date)
	})
	return all
}

// AnalyzeLatest returns only the signals dated at the final bar. It produces
// the same set as AnalyzeAll filtered to that date, without rescanning the
// whole history, which keeps a bar-by-bar simulation close to linear time.
// RSI divergences are always dated at an interior extremum, never the final
// bar, so they cannot appear here.
func (r *Recognizer) AnalyzeLatest() []Signal {
	n := len(r.bars)
	if n < 2 {
		return nil
	}

	var out []Signal

	// MA crossover between the two most recent sessions.
	closes := marketdata.Closes(r.bars)
	curFast := trailingMean(closes, n-1, FastMAPeriod)
	curSlow := trailingMean(closes, n-1, SlowMAPeriod)
	prevFast := trailingMean(closes, n-2, FastMAPeriod)
	prevSlow := trailingMean(closes, n-2, SlowMAPeriod)
	last := r.bars[n-1]
	if prevFast <= prevSlow && curFast > curSlow {
		out = append(out, Signal{
			Type:       MACrossoverBuy,
			Date:       last.Date,
			Price:      last.Close,
			Confidence: crossoverConfidence,
			Details:    fmt.Sprintf("MA%d crossed above MA%d", FastMAPeriod, SlowMAPeriod),
		})
	}
	if prevFast >= prevSlow && curFast < curSlow {
		out = append(out, Signal{
			Type:       MACrossoverSell,
			Date:       last.Date,
			Price:      last.Close,
			Confidence: crossoverConfidence,
			Details:    fmt.Sprintf("MA%d crossed below MA%d", FastMAPeriod, SlowMAPeriod),
		})
	}

	out = append(out, r.DetectBreakouts(BreakoutLookback, BreakoutThreshold)...)

	if n-1 >= 2 {
		out = append(out, r.candlesAt(n-1)...)
	}
	return out
}

// DetectMACrossover emits a buy signal when the fast SMA crosses above the
// slow SMA between consecutive sessions, and a sell signal on the mirror
// cross. Warm-up NaNs never compare true, so no signal fires before both
// averages exist.
func (r *Recognizer) DetectMACrossover(fastPeriod, slowPeriod int) []Signal {
	closes := marketdata.Closes(r.bars)
	fast := indicators.SMA(closes, fastPeriod)
	slow := indicators.SMA(closes, slowPeriod)

	var signals []Signal
	for i := 1; i < len(r.bars); i++ {
		if fast[i-1] <= slow[i-1] && fast[i] > slow[i] {
			signals = append(signals, Signal{
				Type:       MACrossoverBuy,
				Date:       r.bars[i].Date,
				Price:      r.bars[i].Close,
				Confidence: crossoverConfidence,
				Details:    fmt.Sprintf("MA%d crossed above MA%d", fastPeriod, slowPeriod),
			})
		}
		if fast[i-1] >= slow[i-1] && fast[i] < slow[i] {
			signals = append(signals, Signal{
				Type:       MACrossoverSell,
				Date:       r.bars[i].Date,
				Price:      r.bars[i].Close,
				Confidence: crossoverConfidence,
				Details:    fmt.Sprintf("MA%d crossed below MA%d", fastPeriod, slowPeriod),
			})
		}
	}
	return signals
}

// DetectRSIDivergence emits a bullish signal when price makes a lower low
// while RSI makes a higher low between consecutive price troughs, and the
// bearish mirror for peaks. Signals are dated at the confirming extremum.
func (r *Recognizer) DetectRSIDivergence(period int) []Signal {
	closes := marketdata.Closes(r.bars)
	rsi := indicators.RSI(closes, period)

	pricePeaks, priceTroughs := localExtrema(closes, ExtremaOrder)
	rsiPeaks, rsiTroughs := localExtrema(rsi, ExtremaOrder)

	var signals []Signal

	for i := 1; i < len(priceTroughs); i++ {
		cur, prev := priceTroughs[i], priceTroughs[i-1]
		if cur >= len(r.bars)-1 {
			continue
		}
		window := indicesBetween(rsiTroughs, prev, cur)
		if len(window) < 2 {
			continue
		}
		priceLowerLow := r.bars[cur].Low < r.bars[prev].Low
		rsiHigherLow := rsi[window[len(window)-1]] > rsi[window[0]]
		if priceLowerLow && rsiHigherLow {
			signals = append(signals, Signal{
				Type:       RSIBullishDivergence,
				Date:       r.bars[cur].Date,
				Price:      r.bars[cur].Close,
				Confidence: divergenceConfidence,
				Details:    "Bullish RSI divergence detected",
			})
		}
	}

	for i := 1; i < len(pricePeaks); i++ {
		cur, prev := pricePeaks[i], pricePeaks[i-1]
		if cur >= len(r.bars)-1 {
			continue
		}
		window := indicesBetween(rsiPeaks, prev, cur)
		if len(window) < 2 {
			continue
		}
		priceHigherHigh := r.bars[cur].High > r.bars[prev].High
		rsiLowerHigh := rsi[window[len(window)-1]] < rsi[window[0]]
		if priceHigherHigh && rsiLowerHigh {
			signals = append(signals, Signal{
				Type:       RSIBearishDivergence,
				Date:       r.bars[cur].Date,
				Price:      r.bars[cur].Close,
				Confidence: divergenceConfidence,
				Details:    "Bearish RSI divergence detected",
			})
		}
	}
	return signals
}

// DetectBreakouts emits a signal when the previous close sat at least
// threshold below a clustered resistance level (or above a support level)
// and the current close crossed through it. Signals are dated at the final
// bar.
func (r *Recognizer) DetectBreakouts(lookback int, threshold float64) []Signal {
	n := len(r.bars)
	if n < 2 {
		return nil
	}

	start := n - lookback
	if start < 0 {
		start = 0
	}
	window := r.bars[start:]
	levels := indicators.SupportResistance(
		marketdata.Highs(window), marketdata.Lows(window), LevelWindow, LevelCount)

	cur := r.bars[n-1].Close
	prev := r.bars[n-2].Close

	var signals []Signal
	for _, resistance := range levels.Resistance {
		if prev < resistance*(1-threshold) && cur > resistance {
			signals = append(signals, Signal{
				Type:       ResistanceBreakout,
				Date:       r.bars[n-1].Date,
				Price:      cur,
				Confidence: breakoutConfidence,
				Details:    fmt.Sprintf("Broke above resistance at %.2f", resistance),
			})
		}
	}
	for _, support := range levels.Support {
		if prev > support*(1+threshold) && cur < support {
			signals = append(signals, Signal{
				Type:       SupportBreakdown,
				Date:       r.bars[n-1].Date,
				Price:      cur,
				Confidence: breakoutConfidence,
				Details:    fmt.Sprintf("Broke below support at %.2f", support),
			})
		}
	}
	return signals
}

// DetectCandlesticks scans every session from the third bar on for hammer,
// shooting star and engulfing shapes. Zero-range bars are skipped.
func (r *Recognizer) DetectCandlesticks() []Signal {
	var signals []Signal
	for i := 2; i < len(r.bars); i++ {
		signals = append(signals, r.candlesAt(i)...)
	}
	return signals
}

// candlesAt tests the single session at index i (i >= 2). A bar can emit
// both a shadow pattern and an engulfing pattern.
func (r *Recognizer) candlesAt(i int) []Signal {
	bar := r.bars[i]
	o, h, l, c := bar.Open, bar.High, bar.Low, bar.Close
	prevO, prevC := r.bars[i-1].Open, r.bars[i-1].Close

	body := math.Abs(c - o)
	if h-l == 0 {
		return nil
	}

	var signals []Signal

	if c > o && (o-l) > 2*body && (h-c) < 0.1*body {
		signals = append(signals, Signal{
			Type:       HammerBullish,
			Date:       bar.Date,
			Price:      c,
			Confidence: hammerConfidence,
			Details:    "Bullish hammer pattern",
		})
	} else if c < o && (h-o) > 2*body && (c-l) < 0.1*body {
		signals = append(signals, Signal{
			Type:       ShootingStarBearish,
			Date:       bar.Date,
			Price:      c,
			Confidence: starConfidence,
			Details:    "Bearish shooting star pattern",
		})
	}

	if prevC < prevO && c > o && o < prevC && c > prevO {
		signals = append(signals, Signal{
			Type:       BullishEngulfing,
			Date:       bar.Date,
			Price:      c,
			Confidence: engulfingConfidence,
			Details:    "Bullish engulfing pattern",
		})
	} else if prevC > prevO && c < o && o > prevC && c < prevO {
		signals = append(signals, Signal{
			Type:       BearishEngulfing,
			Date:       bar.Date,
			Price:      c,
			Confidence: engulfingConfidence,
			Details:    "Bearish engulfing pattern",
		})
	}
	return signals
}

// localExtrema returns indices that are strictly greater (peaks) or strictly
// less (troughs) than every neighbour within order positions on both sides.
// Endpoints never qualify. NaN comparisons are false, so warm-up regions of
// an indicator series produce no extrema.
func localExtrema(series []float64, order int) (peaks, troughs []int) {
	n := len(series)
	for i := 1; i < n-1; i++ {
		isPeak, isTrough := true, true
		for j := i - order; j <= i+order; j++ {
			if j == i || j < 0 || j >= n {
				continue
			}
			if !(series[i] > series[j]) {
				isPeak = false
			}
			if !(series[i] < series[j]) {
				isTrough = false
			}
			if !isPeak && !isTrough {
				break
			}
		}
		if isPeak {
			peaks = append(peaks, i)
		}
		if isTrough {
			troughs = append(troughs, i)
		}
	}
	return peaks, troughs
}

// indicesBetween returns the members of sorted that fall within [lo, hi].
func indicesBetween(sorted []int, lo, hi int) []int {
	var out []int
	for _, v := range sorted {
		if v >= lo && v <= hi {
			out = append(out, v)
		}
	}
	return out
}

// trailingMean is the mean of the period values ending at index end, or NaN
// when there is not enough history.
func trailingMean(series []float64, end, period int) float64 {
	if end < 0 || end-period+1 < 0 {
		return math.NaN()
	}
	var sum float64
	for i := end - period + 1; i <= end; i++ {
		sum += series[i]
	}
	return sum / float64(period)
}
