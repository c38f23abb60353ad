// Package models defines the core data types shared across the bot.
package models

import "strings"

// MarketStatus represents the current market status.
type MarketStatus string

const (
	MarketOpen    MarketStatus = "OPEN"
	MarketPreOpen MarketStatus = "PRE_OPEN"
	MarketClosed  MarketStatus = "CLOSED"
)

// RawRecord is a loosely-typed row as returned by the market data provider.
// Field names vary between provider versions.
type RawRecord map[string]any

// First returns the value of the first key holding a non-nil, non-blank value.
func (r RawRecord) First(keys ...string) any {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

// String returns the first non-blank value among keys as a trimmed string.
func (r RawRecord) String(keys ...string) string {
	switch v := r.First(keys...).(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return ""
	}
}

// StockRecord is a normalized mover row.
type StockRecord struct {
	Symbol    string   `json:"symbol"`
	Price     *float64 `json:"price,omitempty"`
	ChangePct *float64 `json:"change_pct,omitempty"`
	Volume    int64    `json:"volume"`
	DayHigh   *float64 `json:"day_high,omitempty"`
	DayLow    *float64 `json:"day_low,omitempty"`
}

// Usable reports whether the record can be classified and rendered.
func (s StockRecord) Usable() bool {
	return s.Symbol != "" && s.ChangePct != nil
}

// MarketSnapshot holds the top movers on each side, in provider ranking order.
type MarketSnapshot struct {
	Gainers []StockRecord `json:"gainers"`
	Losers  []StockRecord `json:"losers"`
}

// Empty reports whether neither side has rows.
func (m MarketSnapshot) Empty() bool {
	return len(m.Gainers) == 0 && len(m.Losers) == 0
}

// Quote is a normalized per-symbol quote used for Q&A context.
type Quote struct {
	Symbol        string   `json:"symbol"`
	Company       string   `json:"company"`
	LastPrice     *float64 `json:"last_price,omitempty"`
	ChangePct     *float64 `json:"change_pct,omitempty"`
	PreviousClose *float64 `json:"previous_close,omitempty"`
	Open          *float64 `json:"open,omitempty"`
	DayHigh       *float64 `json:"day_high,omitempty"`
	DayLow        *float64 `json:"day_low,omitempty"`
	Volume        any      `json:"volume,omitempty"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
