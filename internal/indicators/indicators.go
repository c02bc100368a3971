// Package indicators provides pure technical-indicator functions over price
// series. Outputs are aligned with their input: positions without enough
// warm-up history hold NaN instead of a value, and callers are expected to
// tolerate leading NaNs rather than receive an error.
package indicators

import (
	"math"
	"sort"
)

// SMA returns the simple moving average of the series. The first period-1
// entries are NaN.
func SMA(series []float64, period int) []float64 {
	out := nanSlice(len(series))
	if period <= 0 || len(series) < period {
		return out
	}

	var sum float64
	for i, v := range series {
		sum += v
		if i >= period {
			sum -= series[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA returns the exponential moving average of the series, seeded with the
// first sample, so it is defined from index 0.
func EMA(series []float64, period int) []float64 {
	out := nanSlice(len(series))
	if period <= 0 || len(series) == 0 {
		return out
	}

	alpha := 2.0 / (float64(period) + 1.0)
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = alpha*series[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSI returns the Wilder-style relative strength index over 0-100. Gains and
// losses are averaged over a plain rolling window. A zero average loss is
// defined as RSI 100 rather than a division by zero.
func RSI(series []float64, period int) []float64 {
	out := nanSlice(len(series))
	if period <= 0 || len(series) < period {
		return out
	}

	gains := make([]float64, len(series))
	losses := make([]float64, len(series))
	for i := 1; i < len(series); i++ {
		delta := series[i] - series[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	avgGain := SMA(gains, period)
	avgLoss := SMA(losses, period)

	for i := period - 1; i < len(series); i++ {
		if avgLoss[i] == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// MACDResult holds the MACD line, its signal line and their difference.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD returns the moving average convergence divergence of the series.
func MACD(series []float64, fastPeriod, slowPeriod, signalPeriod int) MACDResult {
	emaFast := EMA(series, fastPeriod)
	emaSlow := EMA(series, slowPeriod)

	macdLine := make([]float64, len(series))
	for i := range series {
		macdLine[i] = emaFast[i] - emaSlow[i]
	}

	signalLine := EMA(macdLine, signalPeriod)

	histogram := make([]float64, len(series))
	for i := range series {
		histogram[i] = macdLine[i] - signalLine[i]
	}

	return MACDResult{MACD: macdLine, Signal: signalLine, Histogram: histogram}
}

// BollingerResult holds the middle, upper and lower Bollinger bands.
type BollingerResult struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// Bollinger returns Bollinger bands: SMA(period) plus/minus numStd rolling
// sample standard deviations.
func Bollinger(series []float64, period int, numStd float64) BollingerResult {
	middle := SMA(series, period)
	std := rollingStd(series, period)

	upper := nanSlice(len(series))
	lower := nanSlice(len(series))
	for i := range series {
		upper[i] = middle[i] + std[i]*numStd
		lower[i] = middle[i] - std[i]*numStd
	}
	return BollingerResult{Middle: middle, Upper: upper, Lower: lower}
}

// ATR returns the average true range. The first bar's true range is simply
// high minus low because there is no previous close.
func ATR(high, low, close []float64, period int) []float64 {
	n := len(close)
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		hl := high[i] - low[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return SMA(tr, period)
}

// StochasticResult holds the smoothed %K and %D oscillator lines.
type StochasticResult struct {
	K []float64
	D []float64
}

// Stochastic returns the stochastic oscillator: raw %K = 100*(close-LL)/(HH-LL)
// over period bars, smoothed by smoothK, with %D the smoothD-average of %K.
func Stochastic(high, low, close []float64, period, smoothK, smoothD int) StochasticResult {
	n := len(close)
	rawK := nanSlice(n)
	for i := period - 1; i < n; i++ {
		hh := math.Inf(-1)
		ll := math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			hh = math.Max(hh, high[j])
			ll = math.Min(ll, low[j])
		}
		rawK[i] = 100 * (close[i] - ll) / (hh - ll)
	}

	k := SMA(rawK, smoothK)
	d := SMA(k, smoothD)
	return StochasticResult{K: k, D: d}
}

// Levels holds clustered support and resistance price levels, each sorted
// ascending.
type Levels struct {
	Support    []float64
	Resistance []float64
}

// clusterThreshold is the relative distance under which neighbouring levels
// are merged into one cluster by averaging.
const clusterThreshold = 0.02

// SupportResistance identifies support and resistance levels: local extrema
// of the high/low series over a centered rolling window, clustered when
// within clusterThreshold of each other. At most numLevels of the highest
// resistance clusters and the lowest support clusters are returned.
func SupportResistance(high, low []float64, window, numLevels int) Levels {
	resistancePoints := centeredExtrema(high, window, true)
	supportPoints := centeredExtrema(low, window, false)

	resistance := clusterLevels(resistancePoints)
	support := clusterLevels(supportPoints)

	if len(resistance) > numLevels {
		resistance = resistance[len(resistance)-numLevels:]
	}
	if len(support) > numLevels {
		support = support[:numLevels]
	}
	return Levels{Support: support, Resistance: resistance}
}

// centeredExtrema returns the values at positions where the series equals
// the max (or min) of a centered rolling window. Positions without a full
// window are skipped.
func centeredExtrema(series []float64, window int, wantMax bool) []float64 {
	var points []float64
	n := len(series)
	for i := 0; i < n; i++ {
		lo := i - (window-1)/2
		hi := i + window/2
		if lo < 0 || hi >= n {
			continue
		}
		ext := series[lo]
		for j := lo + 1; j <= hi; j++ {
			if wantMax {
				ext = math.Max(ext, series[j])
			} else {
				ext = math.Min(ext, series[j])
			}
		}
		if series[i] == ext {
			points = append(points, series[i])
		}
	}
	return points
}

// clusterLevels merges nearby levels: the input is sorted ascending and a
// level within clusterThreshold of the previous cluster member joins that
// cluster; each cluster collapses to its mean.
func clusterLevels(levels []float64) []float64 {
	if len(levels) == 0 {
		return nil
	}

	sorted := append([]float64(nil), levels...)
	sort.Float64s(sorted)

	var clusters []float64
	current := []float64{sorted[0]}
	for _, level := range sorted[1:] {
		if level/current[len(current)-1]-1 < clusterThreshold {
			current = append(current, level)
		} else {
			clusters = append(clusters, mean(current))
			current = []float64{level}
		}
	}
	clusters = append(clusters, mean(current))
	return clusters
}

// rollingStd returns the rolling sample standard deviation (denominator n-1).
func rollingStd(series []float64, period int) []float64 {
	out := nanSlice(len(series))
	if period < 2 || len(series) < period {
		return out
	}
	for i := period - 1; i < len(series); i++ {
		window := series[i-period+1 : i+1]
		m := mean(window)
		var ss float64
		for _, v := range window {
			d := v - m
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(period-1))
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
