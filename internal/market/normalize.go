// Package market turns raw provider rows into normalized records, resolves
// symbols from free text and aggregates mover snapshots.
package market

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"market-bot/internal/models"
)

// Synonymous provider keys, highest priority first.
var (
	MoverChangeKeys = []string{"perChange", "pChange", "netPrice", "net_price"}
	QuoteChangeKeys = []string{"pChange", "perChange", "netPrice", "net_price"}
	MoverPriceKeys  = []string{"ltp", "lastPrice"}
	QuotePriceKeys  = []string{"lastPrice", "ltp"}
	VolumeKeys      = []string{"tradedQuantity", "trade_quantity", "totalTradedVolume"}
	DayHighKeys     = []string{"highPrice", "high_price", "dayHigh"}
	DayLowKeys      = []string{"lowPrice", "low_price", "dayLow"}
)

// ToFloat coerces raw into a float, tolerating thousands separators.
// It returns nil when raw is missing or not a numeric literal.
func ToFloat(raw any) *float64 {
	s, ok := numericText(raw)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ToInt coerces raw into a non-negative integer. Any failure yields 0,
// unlike ToFloat: volume consumers rely on the zero default.
func ToInt(raw any) int64 {
	s, ok := numericText(raw)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// JSON numbers decode as float64 and stringify as "1.5e+06".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0
		}
		n = int64(f)
	}
	if n < 0 {
		return 0
	}
	return n
}

func numericText(raw any) (string, bool) {
	if raw == nil {
		return "", false
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return "", false
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return "", false
	}
	return s, true
}

// NormalizeMover converts a top-gainer/loser row into a StockRecord.
func NormalizeMover(r models.RawRecord) models.StockRecord {
	return models.StockRecord{
		Symbol:    strings.ToUpper(r.String("symbol", "SYMBOL")),
		Price:     ToFloat(r.First(MoverPriceKeys...)),
		ChangePct: ToFloat(r.First(MoverChangeKeys...)),
		Volume:    ToInt(r.First(VolumeKeys...)),
		DayHigh:   ToFloat(r.First(DayHighKeys...)),
		DayLow:    ToFloat(r.First(DayLowKeys...)),
	}
}

// NormalizeQuote converts a per-symbol quote into a Quote. Company comes from
// the symbol directory and may be empty.
func NormalizeQuote(symbol, company string, r models.RawRecord) models.Quote {
	return models.Quote{
		Symbol:        symbol,
		Company:       company,
		LastPrice:     ToFloat(r.First(QuotePriceKeys...)),
		ChangePct:     ToFloat(r.First(QuoteChangeKeys...)),
		PreviousClose: ToFloat(r.First("previousClose")),
		Open:          ToFloat(r.First("open")),
		DayHigh:       ToFloat(r.First("dayHigh")),
		DayLow:        ToFloat(r.First("dayLow")),
		Volume:        r.First("totalTradedVolume"),
	}
}
