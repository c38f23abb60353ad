package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-bot/internal/models"
)

func TestToFloat(t *testing.T) {
	testCases := []struct {
		name string
		raw  any
		want *float64
	}{
		{"nil", nil, nil},
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"not a number", "N/A", nil},
		{"dash", "-", nil},
		{"thousands separator", "1,234.50", models.Float(1234.5)},
		{"negative", "-2.75", models.Float(-2.75)},
		{"padded", " 42 ", models.Float(42)},
		{"float", 3.1, models.Float(3.1)},
		{"int", 7, models.Float(7)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToFloat(tc.raw)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 1e-9)
		})
	}
}

func TestToInt(t *testing.T) {
	testCases := []struct {
		name string
		raw  any
		want int64
	}{
		{"nil", nil, 0},
		{"garbage", "lots", 0},
		{"thousands separator", "1,234,567", 1234567},
		{"json number", float64(2500000), 2500000},
		{"fractional", "12.5", 0},
		{"negative clamps to zero", "-300", 0},
		{"negative float clamps to zero", -1.0, 0},
		{"int", 900, 900},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ToInt(tc.raw))
		})
	}
}

func TestNormalizeMoverPrefersFirstSynonym(t *testing.T) {
	rec := NormalizeMover(models.RawRecord{
		"symbol":         "tcs",
		"ltp":            "4,012.10",
		"lastPrice":      "1",
		"perChange":      "3.1",
		"pChange":        "99",
		"tradedQuantity": "1,200,000",
		"highPrice":      4020.0,
		"low_price":      "3950",
	})

	assert.Equal(t, "TCS", rec.Symbol)
	require.NotNil(t, rec.Price)
	assert.InDelta(t, 4012.1, *rec.Price, 1e-9)
	require.NotNil(t, rec.ChangePct)
	assert.InDelta(t, 3.1, *rec.ChangePct, 1e-9)
	assert.Equal(t, int64(1200000), rec.Volume)
	require.NotNil(t, rec.DayHigh)
	assert.InDelta(t, 4020.0, *rec.DayHigh, 1e-9)
	require.NotNil(t, rec.DayLow)
	assert.InDelta(t, 3950.0, *rec.DayLow, 1e-9)
	assert.True(t, rec.Usable())
}

func TestNormalizeMoverSkipsBlankSynonyms(t *testing.T) {
	rec := NormalizeMover(models.RawRecord{
		"symbol":    "INFY",
		"perChange": " ",
		"pChange":   nil,
		"netPrice":  "-1.25",
	})

	require.NotNil(t, rec.ChangePct)
	assert.InDelta(t, -1.25, *rec.ChangePct, 1e-9)
	assert.Nil(t, rec.Price)
	assert.Equal(t, int64(0), rec.Volume)
}

func TestNormalizeMoverUnusable(t *testing.T) {
	assert.False(t, NormalizeMover(models.RawRecord{"symbol": "X", "perChange": "N/A"}).Usable())
	assert.False(t, NormalizeMover(models.RawRecord{"perChange": "2.0"}).Usable())
}

func TestNormalizeQuote(t *testing.T) {
	q := NormalizeQuote("TCS", "Tata Consultancy Services Limited", models.RawRecord{
		"lastPrice":         4012.1,
		"pChange":           "3.1",
		"previousClose":     3891.5,
		"open":              "3,900",
		"dayHigh":           4020.0,
		"dayLow":            3950.0,
		"totalTradedVolume": float64(1234567),
	})

	assert.Equal(t, "TCS", q.Symbol)
	assert.Equal(t, "Tata Consultancy Services Limited", q.Company)
	assert.InDelta(t, 4012.1, *q.LastPrice, 1e-9)
	assert.InDelta(t, 3.1, *q.ChangePct, 1e-9)
	assert.InDelta(t, 3891.5, *q.PreviousClose, 1e-9)
	assert.InDelta(t, 3900.0, *q.Open, 1e-9)
	assert.Equal(t, float64(1234567), q.Volume)
	assert.False(t, math.IsNaN(*q.DayHigh))
}
