// Package alerts evaluates a fixed watchlist against a percentage-move
// threshold, firing at most once per symbol per trading day.
package alerts

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"market-bot/internal/logging"
	"market-bot/internal/market"
	"market-bot/internal/models"
	"market-bot/pkg/utils"
)

// QuoteSource fetches a loosely-typed quote for one symbol.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (models.RawRecord, error)
}

// State remembers the last day each symbol triggered. It lives only in
// memory and is lost on restart.
type State struct {
	mu          sync.Mutex
	lastTrigger map[string]string // symbol -> 2006-01-02
}

// NewState creates an empty alert state.
func NewState() *State {
	return &State{lastTrigger: make(map[string]string)}
}

// TriggeredOn reports whether symbol already triggered on day.
func (s *State) TriggeredOn(symbol, day string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTrigger[symbol] == day
}

// LastTriggered returns the day symbol last triggered, if ever.
func (s *State) LastTriggered(symbol string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.lastTrigger[symbol]
	return day, ok
}

// tryTrigger marks symbol as triggered on day. It returns false without
// changing anything when guard is set and symbol already triggered on day.
func (s *State) tryTrigger(symbol, day string, guard bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if guard && s.lastTrigger[symbol] == day {
		return false
	}
	s.lastTrigger[symbol] = day
	return true
}

// Evaluator checks a watchlist once per call.
type Evaluator struct {
	Quotes QuoteSource
	State  *State

	// Threshold is the absolute percentage change that fires an alert.
	Threshold float64
	// OncePerDay suppresses repeat alerts for a symbol within one day.
	OncePerDay bool
	// AlwaysSnapshot sends a message every cycle, not only on triggers.
	AlwaysSnapshot bool

	Clock  func() time.Time
	Logger zerolog.Logger
}

// NewEvaluator creates an evaluator with a fresh state and the wall clock.
func NewEvaluator(quotes QuoteSource, threshold float64, oncePerDay, alwaysSnapshot bool, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		Quotes:         quotes,
		State:          NewState(),
		Threshold:      threshold,
		OncePerDay:     oncePerDay,
		AlwaysSnapshot: alwaysSnapshot,
		Clock:          time.Now,
		Logger:         logger,
	}
}

// Evaluate fetches each watchlist symbol and decides whether it triggers.
// Symbols whose quote fails or whose change is unparsable produce no row
// and leave the state untouched.
func (e *Evaluator) Evaluate(ctx context.Context, watchlist []string) models.WatchResult {
	now := time.Now()
	if e.Clock != nil {
		now = e.Clock()
	}
	res := models.WatchResult{Day: utils.DayKey(now)}

	for _, symbol := range watchlist {
		log := logging.WithSymbol(e.Logger, symbol)

		quote, err := e.Quotes.Quote(ctx, symbol)
		if err != nil {
			log.Warn().Err(err).Msg("Quote fetch failed, skipping symbol")
			continue
		}

		rawChange := quote.First(market.QuoteChangeKeys...)
		change := market.ToFloat(rawChange)
		last := market.ToFloat(quote.First(market.QuotePriceKeys...))

		log.Debug().
			Interface("raw_change", rawChange).
			Interface("change", change).
			Interface("last", last).
			Msg("Watchlist quote")

		if change == nil || math.IsNaN(*change) {
			continue
		}

		triggered := false
		if math.Abs(*change) >= e.Threshold {
			triggered = e.State.tryTrigger(symbol, res.Day, e.OncePerDay)
		}
		if triggered {
			res.AnyTriggered = true
			logging.LogAlert(e.Logger, symbol, *change, e.Threshold)
		}

		res.Rows = append(res.Rows, models.WatchRow{
			Symbol:    symbol,
			ChangePct: *change,
			LastPrice: last,
			Triggered: triggered,
		})
	}

	res.ShouldSend = len(res.Rows) > 0 && (res.AnyTriggered || e.AlwaysSnapshot)
	return res
}
