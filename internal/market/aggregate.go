package market

import (
	"math"

	"market-bot/internal/models"
)

// Aggregate normalizes raw mover rows into a snapshot. Each side is cut to
// the first topN rows in provider order and only then are unusable rows
// dropped, so a side can hold fewer than topN records.
func Aggregate(rawGainers, rawLosers []models.RawRecord, topN int) models.MarketSnapshot {
	return models.MarketSnapshot{
		Gainers: normalizeSide(rawGainers, topN),
		Losers:  normalizeSide(rawLosers, topN),
	}
}

func normalizeSide(raw []models.RawRecord, topN int) []models.StockRecord {
	if topN < 0 {
		topN = 0
	}
	if len(raw) > topN {
		raw = raw[:topN]
	}
	out := make([]models.StockRecord, 0, len(raw))
	for _, r := range raw {
		rec := NormalizeMover(r)
		if rec.Usable() {
			out = append(out, rec)
		}
	}
	return out
}

// Mood is the aggregate bias of a snapshot.
type Mood int

const (
	MoodBalanced Mood = iota
	MoodGainersStronger
	MoodLosersStronger
)

func (m Mood) String() string {
	switch m {
	case MoodGainersStronger:
		return "Bias: 🟢 Gainers are stronger in this snapshot."
	case MoodLosersStronger:
		return "Bias: 🔴 Losers are stronger in this snapshot."
	default:
		return "Bias: ⚪ Mixed / balanced snapshot."
	}
}

// SummarizeBias compares the plain average change of gainers against the
// magnitude of the average change of losers.
func SummarizeBias(gainers, losers []models.StockRecord) Mood {
	avgG := averageChange(gainers)
	avgL := math.Abs(averageChange(losers))
	switch {
	case avgG > avgL:
		return MoodGainersStronger
	case avgL > avgG:
		return MoodLosersStronger
	default:
		return MoodBalanced
	}
}

func averageChange(recs []models.StockRecord) float64 {
	if len(recs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range recs {
		if r.ChangePct != nil {
			sum += *r.ChangePct
		}
	}
	return sum / float64(len(recs))
}
