package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-chart-go/internal/patterns"
)

func TestCombinations(t *testing.T) {
	vocab := patterns.AllSignalTypes()

	t.Run("C(4,2) yields six distinct pairs", func(t *testing.T) {
		got := combinations(vocab[:4], 2)
		require.Len(t, got, 6)

		seen := make(map[string]bool)
		for _, combo := range got {
			require.Len(t, combo, 2)
			key := string(combo[0]) + "|" + string(combo[1])
			assert.False(t, seen[key], "duplicate combination %s", key)
			seen[key] = true
		}
	})

	t.Run("Full-size combination is the vocabulary itself", func(t *testing.T) {
		got := combinations(vocab, len(vocab))
		require.Len(t, got, 1)
		assert.Equal(t, vocab, got[0])
	})

	t.Run("Out-of-range sizes yield nothing", func(t *testing.T) {
		assert.Empty(t, combinations(vocab, 0))
		assert.Empty(t, combinations(vocab, len(vocab)+1))
	})
}

func TestOptimizePatternCombinations(t *testing.T) {
	r := newTestRunner(t, engulfingSeries())

	ranked := r.OptimizePatternCombinations(1, 2, 4)

	// C(10,1) + C(10,2) over the ten-type vocabulary.
	require.Len(t, ranked, 55)

	for _, res := range ranked {
		assert.GreaterOrEqual(t, res.NumPatterns, 1)
		assert.LessOrEqual(t, res.NumPatterns, 2)
		assert.Len(t, res.Patterns, res.NumPatterns)
	}

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].TotalReturn, ranked[i].TotalReturn,
			"results must be ranked by total return descending")
	}

	// The series carries one tradeable bullish engulfing, so every
	// combination containing it trades at least once.
	for _, res := range ranked {
		for _, p := range res.Patterns {
			if p == patterns.BullishEngulfing {
				assert.GreaterOrEqual(t, res.TotalTrades, 1, "combo %s", res.PatternNames())
			}
		}
	}
}

func TestComboResultPatternNames(t *testing.T) {
	c := ComboResult{Patterns: []patterns.SignalType{patterns.MACrossoverBuy, patterns.HammerBullish}}
	assert.Equal(t, "MA_CROSSOVER_BUY, HAMMER_BULLISH", c.PatternNames())
}
