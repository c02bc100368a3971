package models

import (
	"time"

	"gorm.io/gorm"
)

// TradeRecord is a closed simulated trade archived after a backtest run.
type TradeRecord struct {
	gorm.Model
	Symbol     string    `json:"symbol"`
	Side       string    `json:"side"` // "BUY" or "SELL"
	EntryDate  time.Time `json:"entry_date"`
	ExitDate   time.Time `json:"exit_date"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Quantity   float64   `json:"quantity"`
	Commission float64   `json:"commission"`
	PnL        float64   `json:"pnl"`
	ReturnPct  float64   `json:"return_pct"`
}
