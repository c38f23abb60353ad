// Package report renders snapshots, watchlist cycles and quote context as
// chat-ready text.
package report

import (
	"fmt"
	"strings"
	"time"

	"market-bot/internal/market"
	"market-bot/internal/models"
	"market-bot/internal/sentiment"
	"market-bot/pkg/utils"
)

// Fixed footer and fallback sentences.
const (
	Disclaimer          = "_Auto-generated for study & monitoring only. Not investment advice._"
	WatchlistDisclaimer = "_Auto-generated watchlist alerts for study & monitoring only. Not investment advice._"
	WatchlistQuiet      = "_No symbol crossed the alert threshold yet. Snapshot for monitoring only._"
	NoSymbolsContext    = "No valid NSE symbols resolved from the question."
)

// StockLine renders one ranked mover with its tag and sentiment.
func StockLine(rank int, s models.StockRecord) string {
	change := 0.0
	if s.ChangePct != nil {
		change = *s.ChangePct
	}
	tag := sentiment.Classify(change, s.Volume)
	bias := sentiment.ComputeBias(s)

	return fmt.Sprintf("%d. *%s*  %s  (%s)\n   %s\n   Sentiment: %s",
		rank, s.Symbol, utils.FormatPercent(change), utils.FormatPrice(s.Price), tag, bias)
}

// SnapshotMessage renders the market snapshot as Telegram Markdown.
func SnapshotMessage(snap models.MarketSnapshot, now time.Time, exchange string) string {
	lines := []string{
		fmt.Sprintf("📊 *Indian Market Snapshot* (%s)", exchange),
		fmt.Sprintf("_As of %s_", utils.HeaderTime(now)),
		"",
	}

	if len(snap.Gainers) > 0 {
		lines = append(lines, "🟢 *Top Gainers*")
		for i, g := range snap.Gainers {
			lines = append(lines, StockLine(i+1, g))
		}
		lines = append(lines, "")
	}

	if len(snap.Losers) > 0 {
		lines = append(lines, "🔴 *Top Losers*")
		for i, l := range snap.Losers {
			lines = append(lines, StockLine(i+1, l))
		}
		lines = append(lines, "")
	}

	if len(snap.Gainers) > 0 && len(snap.Losers) > 0 {
		lines = append(lines, market.SummarizeBias(snap.Gainers, snap.Losers).String(), "")
	}

	lines = append(lines, Disclaimer)
	return strings.Join(lines, "\n")
}

// WatchlistMessage renders one alert cycle. The header and footer depend on
// whether any symbol triggered.
func WatchlistMessage(res models.WatchResult, now time.Time, exchange string, threshold float64) string {
	var header string
	if res.AnyTriggered {
		header = fmt.Sprintf("⚡ *Watchlist Alerts* (±%.1f%% or more) (%s)", threshold, exchange)
	} else {
		header = fmt.Sprintf("📌 *Watchlist Snapshot* (%s)", exchange)
	}

	lines := []string{header, fmt.Sprintf("_As of %s_", utils.HeaderTime(now)), ""}
	for _, row := range res.Rows {
		marker := "•"
		if row.Triggered {
			marker = "🔥"
		}
		lines = append(lines, fmt.Sprintf("%s *%s* %s (%s)",
			marker, row.Symbol, utils.FormatPercent(row.ChangePct), utils.FormatPrice(row.LastPrice)))
	}

	lines = append(lines, "")
	if res.AnyTriggered {
		lines = append(lines, WatchlistDisclaimer)
	} else {
		lines = append(lines, WatchlistQuiet)
	}
	return strings.Join(lines, "\n")
}

// QuoteContext renders quotes as the numeric context handed to the assistant.
func QuoteContext(quotes []models.Quote) string {
	if len(quotes) == 0 {
		return NoSymbolsContext
	}
	lines := make([]string, 0, len(quotes))
	for _, q := range quotes {
		lines = append(lines, fmt.Sprintf(
			"%s (%s): Price ₹%s, Change %s%%, PrevClose ₹%s, DayRange ₹%s - ₹%s, Volume %s",
			q.Symbol, q.Company,
			utils.FormatRaw(q.LastPrice),
			utils.FormatRaw(q.ChangePct),
			utils.FormatRaw(q.PreviousClose),
			utils.FormatRaw(q.DayLow),
			utils.FormatRaw(q.DayHigh),
			volumeText(q.Volume),
		))
	}
	return strings.Join(lines, "\n")
}

func volumeText(v any) string {
	if v == nil {
		return "N/A"
	}
	if f := market.ToFloat(v); f != nil {
		return utils.FormatRaw(f)
	}
	return fmt.Sprint(v)
}
