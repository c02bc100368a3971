package strategy

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"trading-chart-go/internal/patterns"
)

// ComboResult is the performance summary of one pattern combination.
type ComboResult struct {
	Patterns     []patterns.SignalType
	NumPatterns  int
	TotalTrades  int
	WinRate      float64
	TotalReturn  float64
	SharpeRatio  float64
	MaxDrawdown  float64
	ProfitFactor float64
}

// PatternNames returns the combination as a comma-separated string.
func (c ComboResult) PatternNames() string {
	names := make([]string, len(c.Patterns))
	for i, p := range c.Patterns {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// OptimizePatternCombinations backtests every combination of the fixed
// pattern vocabulary with between minPatterns and maxPatterns members and
// returns the results ranked by total return descending (ties broken by
// pattern names so the ranking is deterministic). Combinations are
// independent and read-only over the shared history, so they are spread
// across a fixed pool of workers; each run constructs its own engine.
func (r *Runner) OptimizePatternCombinations(minPatterns, maxPatterns, workers int) []ComboResult {
	vocabulary := patterns.AllSignalTypes()

	var combos [][]patterns.SignalType
	for size := minPatterns; size <= maxPatterns; size++ {
		combos = append(combos, combinations(vocabulary, size)...)
	}

	r.logger.Info("Starting pattern combination sweep",
		zap.Int("combinations", len(combos)),
		zap.Int("min_patterns", minPatterns),
		zap.Int("max_patterns", maxPatterns),
		zap.Int("workers", workers))

	if workers <= 0 {
		workers = 1
	}

	tasks := make(chan []patterns.SignalType, len(combos))
	results := make(chan ComboResult, len(combos))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for combo := range tasks {
				res := r.RunPatternStrategy(combo, defaultPositionSize, defaultConfidenceThreshold)
				results <- ComboResult{
					Patterns:     combo,
					NumPatterns:  len(combo),
					TotalTrades:  res.Metrics.TotalTrades,
					WinRate:      res.Metrics.WinRate,
					TotalReturn:  res.Metrics.TotalReturn,
					SharpeRatio:  res.Metrics.SharpeRatio,
					MaxDrawdown:  res.Metrics.MaxDrawdown,
					ProfitFactor: res.Metrics.ProfitFactor,
				}
			}
		}()
	}

	for _, combo := range combos {
		tasks <- combo
	}
	close(tasks)

	go func() {
		wg.Wait()
		close(results)
	}()

	ranked := make([]ComboResult, 0, len(combos))
	for res := range results {
		ranked = append(ranked, res)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalReturn != ranked[j].TotalReturn {
			return ranked[i].TotalReturn > ranked[j].TotalReturn
		}
		return ranked[i].PatternNames() < ranked[j].PatternNames()
	})

	return ranked
}

// Sweep runs share one fixed sizing so combinations are comparable.
const (
	defaultPositionSize        = 0.1
	defaultConfidenceThreshold = 0.7
)

// combinations returns all k-element subsets of items, preserving the input
// order within each subset.
func combinations(items []patterns.SignalType, k int) [][]patterns.SignalType {
	if k <= 0 || k > len(items) {
		return nil
	}

	var out [][]patterns.SignalType
	combo := make([]patterns.SignalType, 0, k)

	var recurse func(start int)
	recurse = func(start int) {
		if len(combo) == k {
			out = append(out, append([]patterns.SignalType(nil), combo...))
			return
		}
		// not enough items left to fill the combination
		if len(items)-start < k-len(combo) {
			return
		}
		for i := start; i < len(items); i++ {
			combo = append(combo, items[i])
			recurse(i + 1)
			combo = combo[:len(combo)-1]
		}
	}
	recurse(0)

	return out
}
