package strategy

import (
	"fmt"

	"trading-chart-go/internal/patterns"
)

// Strategy is one configured backtest that can be run against a Runner's
// price history.
type Strategy interface {
	// Name returns the unique name of the strategy.
	Name() string

	// Run executes the backtest and returns its result.
	Run(r *Runner) (Result, error)
}

// PatternStrategy trades a fixed set of recognized pattern types.
type PatternStrategy struct {
	Patterns            []string
	PositionSize        float64
	ConfidenceThreshold float64
}

func (s *PatternStrategy) Name() string {
	return "pattern"
}

func (s *PatternStrategy) Run(r *Runner) (Result, error) {
	allowed, err := ParseSignalTypes(s.Patterns)
	if err != nil {
		return Result{}, err
	}
	return r.RunPatternStrategy(allowed, s.PositionSize, s.ConfidenceThreshold), nil
}

// IndicatorStrategy trades direct indicator rules.
type IndicatorStrategy struct {
	Rules        IndicatorRules
	PositionSize float64
}

func (s *IndicatorStrategy) Name() string {
	return "indicator"
}

func (s *IndicatorStrategy) Run(r *Runner) (Result, error) {
	return r.RunIndicatorStrategy(s.Rules, s.PositionSize), nil
}

// ParseSignalTypes converts configured pattern names into signal types,
// rejecting names outside the fixed vocabulary.
func ParseSignalTypes(names []string) ([]patterns.SignalType, error) {
	known := make(map[patterns.SignalType]bool)
	for _, t := range patterns.AllSignalTypes() {
		known[t] = true
	}

	out := make([]patterns.SignalType, 0, len(names))
	for _, name := range names {
		t := patterns.SignalType(name)
		if !known[t] {
			return nil, fmt.Errorf("unknown pattern type %q", name)
		}
		out = append(out, t)
	}
	return out, nil
}
