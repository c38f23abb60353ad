// Package sentiment labels a day's move with heuristic tags. The labels are
// descriptive, never forecasts.
package sentiment

import (
	"fmt"

	"market-bot/internal/models"
)

// HighVolume separates strong momentum from breakout-like moves in the 5-8% band.
const HighVolume = 1_000_000

// Tag is a short explanation of a move.
type Tag int

const (
	TagUnknown Tag = iota
	TagExtendedUp
	TagMomentumWithVolume
	TagBreakoutWatch
	TagHealthyUptrend
	TagSideways
	TagNormalPullback
	TagSharpSelloff
)

var tagText = map[Tag]string{
	TagUnknown:            "❓ No clear pattern, watch broader context",
	TagExtendedUp:         "🔴 Extended move up, high volatility / pullback risk",
	TagMomentumWithVolume: "⚡ Strong momentum with volume, possible continuation",
	TagBreakoutWatch:      "📈 Breakout-like move, watch next sessions",
	TagHealthyUptrend:     "⬆️ Healthy up-move, potential trend continuation",
	TagSideways:           "➖ Sideways / indecisive day",
	TagNormalPullback:     "📉 Normal pullback, check support & key supports",
	TagSharpSelloff:       "🚨 Sharp selloff, very risky / possible oversold bounce",
}

func (t Tag) String() string {
	if s, ok := tagText[t]; ok {
		return s
	}
	return tagText[TagUnknown]
}

// Classify tags a move by its percentage change. Volume only matters in the
// 5-8% band. NaN yields TagUnknown.
func Classify(changePct float64, volume int64) Tag {
	switch {
	case changePct >= 8:
		return TagExtendedUp
	case changePct >= 5 && changePct < 8:
		if volume > HighVolume {
			return TagMomentumWithVolume
		}
		return TagBreakoutWatch
	case changePct >= 2 && changePct < 5:
		return TagHealthyUptrend
	case changePct > -2 && changePct < 2:
		return TagSideways
	case changePct >= -5 && changePct <= -2:
		return TagNormalPullback
	case changePct < -5:
		return TagSharpSelloff
	}
	return TagUnknown
}

// Risk is a qualitative risk tier.
type Risk string

const (
	RiskLow      Risk = "Low"
	RiskMedium   Risk = "Medium"
	RiskHigh     Risk = "High"
	RiskVeryHigh Risk = "Very high"
)

// Bias is a heuristic sentiment label with its risk tier.
type Bias struct {
	Label string
	Risk  Risk
}

func (b Bias) String() string {
	return fmt.Sprintf("%s | Risk: %s", b.Label, b.Risk)
}

// RangePosition locates price within the day's [low, high] band, 0 at the
// low and 1 at the high. ok is false when any input is missing or the band
// is empty.
func RangePosition(price, high, low *float64) (pos float64, ok bool) {
	if price == nil || high == nil || low == nil || !(*high > *low) {
		return 0, false
	}
	return (*price - *low) / (*high - *low), true
}

// ComputeBias combines the day's change with where the last price sits in
// the day's range. A missing change counts as flat.
func ComputeBias(s models.StockRecord) Bias {
	change := 0.0
	if s.ChangePct != nil {
		change = *s.ChangePct
	}
	pos, hasPos := RangePosition(s.Price, s.DayHigh, s.DayLow)

	switch {
	case change >= 5:
		if hasPos && pos > 0.7 {
			return Bias{"Short-term bullish momentum", RiskHigh}
		}
		return Bias{"Momentum tiring / late entry risk", RiskHigh}
	case change >= 2 && change < 5:
		if hasPos && pos > 0.6 {
			return Bias{"Gradual uptrend, dips can be watched", RiskMedium}
		}
		return Bias{"Up but sellers active intraday", RiskMedium}
	case change > -2 && change < 2:
		return Bias{"Indecisive / consolidation", RiskLow}
	case change >= -5 && change <= -2:
		if hasPos && pos < 0.4 {
			return Bias{"Oversold bounce candidate (still risky)", RiskHigh}
		}
		return Bias{"Normal pullback inside trend", RiskMedium}
	case change < -5:
		return Bias{"Panic selloff / very high risk zone", RiskVeryHigh}
	}
	// Only NaN gets here.
	return Bias{"Sideways / noisy", RiskMedium}
}
