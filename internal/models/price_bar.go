package models

import (
	"time"

	"gorm.io/gorm"
)

// PriceBar is one persisted daily OHLCV session for a symbol.
// Bars are never updated in place; the importer skips rows that already exist.
type PriceBar struct {
	gorm.Model
	Symbol string    `gorm:"uniqueIndex:idx_symbol_date;not null"`
	Date   time.Time `gorm:"uniqueIndex:idx_symbol_date;not null"`
	Open   float64   `gorm:"not null"`
	High   float64   `gorm:"not null"`
	Low    float64   `gorm:"not null"`
	Close  float64   `gorm:"not null"`
	Volume float64
}
