package marketdata

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"trading-chart-go/internal/models"
)

// Loader reads and writes daily price history in the database.
type Loader struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewLoader creates a new price history loader.
func NewLoader(db *gorm.DB, logger *zap.Logger) *Loader {
	return &Loader{db: db, logger: logger}
}

// LoadBars returns the full stored history for a symbol in chronological
// order. The series is validated before it is handed to any consumer.
func (l *Loader) LoadBars(symbol string) ([]Bar, error) {
	var rows []models.PriceBar
	if err := l.db.Where("symbol = ?", symbol).Order("date asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load bars for %s: %w", symbol, err)
	}

	bars := make([]Bar, 0, len(rows))
	for _, r := range rows {
		bars = append(bars, Bar{
			Date:   r.Date,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}

	if err := ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("stored history for %s is malformed: %w", symbol, err)
	}

	l.logger.Info("Loaded price history",
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)),
		zap.Time("first", bars[0].Date),
		zap.Time("last", bars[len(bars)-1].Date))

	return bars, nil
}

// LoadBarsBetween returns the stored history for a symbol restricted to
// [start, end], in chronological order.
func (l *Loader) LoadBarsBetween(symbol string, start, end time.Time) ([]Bar, error) {
	bars, err := l.LoadBars(symbol)
	if err != nil {
		return nil, err
	}
	var out []Bar
	for _, b := range bars {
		if b.Date.Before(start) || b.Date.After(end) {
			continue
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no bars for %s between %s and %s",
			symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return out, nil
}

// SaveBars stores bars for a symbol, skipping sessions that already exist.
func (l *Loader) SaveBars(symbol string, bars []Bar) (int, error) {
	saved := 0
	for _, b := range bars {
		row := models.PriceBar{Symbol: symbol, Date: b.Date}
		res := l.db.Where(&models.PriceBar{Symbol: symbol, Date: b.Date}).
			Attrs(models.PriceBar{
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: b.Volume,
			}).
			FirstOrCreate(&row)
		if res.Error != nil {
			return saved, fmt.Errorf("failed to save bar %s %s: %w",
				symbol, b.Date.Format("2006-01-02"), res.Error)
		}
		if res.RowsAffected > 0 {
			saved++
		}
	}

	l.logger.Info("Saved price history",
		zap.String("symbol", symbol),
		zap.Int("received", len(bars)),
		zap.Int("new", saved))

	return saved, nil
}
