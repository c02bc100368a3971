package models

import "gorm.io/gorm"

// OptimizationResult is one row of a pattern-combination sweep, ranked by
// total return when the sweep is persisted.
type OptimizationResult struct {
	gorm.Model
	Symbol       string  `json:"symbol"`
	Patterns     string  `json:"patterns"` // comma-separated pattern names
	NumPatterns  int     `json:"num_patterns"`
	TotalTrades  int     `json:"total_trades"`
	WinRate      float64 `json:"win_rate"`
	TotalReturn  float64 `json:"total_return"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	ProfitFactor float64 `json:"profit_factor"`
}
