package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n-1)
}

func TestValidateBars(t *testing.T) {
	t.Run("Empty series", func(t *testing.T) {
		err := ValidateBars(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("Strictly increasing dates pass", func(t *testing.T) {
		bars := []Bar{{Date: day(1)}, {Date: day(2)}, {Date: day(3)}}
		assert.NoError(t, ValidateBars(bars))
	})

	t.Run("Duplicate date rejected", func(t *testing.T) {
		bars := []Bar{{Date: day(1)}, {Date: day(2)}, {Date: day(2)}}
		err := ValidateBars(bars)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "strictly increasing")
		assert.Contains(t, err.Error(), "index 2")
	})

	t.Run("Out of order rejected", func(t *testing.T) {
		bars := []Bar{{Date: day(2)}, {Date: day(1)}}
		assert.Error(t, ValidateBars(bars))
	})
}

func TestSeriesExtraction(t *testing.T) {
	bars := []Bar{
		{Date: day(1), Open: 1, High: 2, Low: 0.5, Close: 1.5},
		{Date: day(2), Open: 1.5, High: 3, Low: 1, Close: 2.5},
	}

	assert.Equal(t, []float64{1.5, 2.5}, Closes(bars))
	assert.Equal(t, []float64{2, 3}, Highs(bars))
	assert.Equal(t, []float64{0.5, 1}, Lows(bars))
}
