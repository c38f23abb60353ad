// Package bot wires the market data provider, the formatter, the alert
// evaluator and the assistant to a chat channel.
package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"market-bot/internal/alerts"
	"market-bot/internal/assistant"
	"market-bot/internal/config"
	apperrors "market-bot/internal/errors"
	"market-bot/internal/logging"
	"market-bot/internal/market"
	"market-bot/internal/models"
	"market-bot/internal/notify"
	"market-bot/internal/provider"
	"market-bot/internal/report"
	"market-bot/pkg/utils"
)

// Bot runs snapshot, alert and Q&A jobs. Jobs are serialized: a scheduler
// may fire them from different goroutines but only one runs at a time.
type Bot struct {
	provider  provider.Provider
	notifier  notify.Notifier
	llm       assistant.LLMClient
	evaluator *alerts.Evaluator
	directory *market.Directory

	market config.MarketConfig
	alerts config.AlertsConfig

	clock  func() time.Time
	logger zerolog.Logger

	runMu sync.Mutex
}

// Options configures a Bot. LLM may be nil when Q&A is not used.
type Options struct {
	Config   *config.Config
	Provider provider.Provider
	Notifier notify.Notifier
	LLM      assistant.LLMClient
	Logger   zerolog.Logger
	Clock    func() time.Time
}

// New creates a bot. The symbol directory starts empty; call LoadDirectory
// before answering questions.
func New(opts Options) *Bot {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	evaluator := alerts.NewEvaluator(
		opts.Provider,
		opts.Config.Alerts.ThresholdPercent,
		opts.Config.Alerts.OncePerDay,
		opts.Config.Alerts.AlwaysSendSnapshot,
		opts.Logger,
	)
	evaluator.Clock = clock

	return &Bot{
		provider:  opts.Provider,
		notifier:  opts.Notifier,
		llm:       opts.LLM,
		evaluator: evaluator,
		directory: market.NewDirectory(nil),
		market:    opts.Config.Market,
		alerts:    opts.Config.Alerts,
		clock:     clock,
		logger:    opts.Logger,
	}
}

// LoadDirectory fetches the symbol directory. On failure the directory stays
// empty, so only company-name-free questions lose context.
func (b *Bot) LoadDirectory(ctx context.Context) error {
	log := logging.WithOperation(b.logger, "load_directory")

	raw, err := b.provider.StockCodes(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Symbol directory unavailable")
		return err
	}

	dir := market.LoadDirectory(raw)
	b.runMu.Lock()
	b.directory = dir
	b.runMu.Unlock()

	log.Info().Int("symbols", dir.Len()).Msg("Symbol directory loaded")
	return nil
}

// Directory returns the current symbol directory.
func (b *Bot) Directory() *market.Directory {
	b.runMu.Lock()
	defer b.runMu.Unlock()
	return b.directory
}

// Evaluator exposes the alert evaluator, mainly for inspecting its state.
func (b *Bot) Evaluator() *alerts.Evaluator {
	return b.evaluator
}

// Snapshot fetches movers and aggregates them. A failed side is logged and
// treated as empty.
func (b *Bot) Snapshot(ctx context.Context) models.MarketSnapshot {
	log := logging.WithOperation(b.logger, "snapshot")

	gainers, err := b.provider.TopGainers(ctx, b.market.Index)
	if err != nil {
		log.Warn().Err(err).Msg("Top gainers unavailable")
		gainers = nil
	}
	losers, err := b.provider.TopLosers(ctx, b.market.Index)
	if err != nil {
		log.Warn().Err(err).Msg("Top losers unavailable")
		losers = nil
	}

	snap := market.Aggregate(gainers, losers, b.market.TopN)
	log.Debug().
		Int("raw_gainers", len(gainers)).
		Int("raw_losers", len(losers)).
		Int("gainers", len(snap.Gainers)).
		Int("losers", len(snap.Losers)).
		Msg("Snapshot aggregated")
	return snap
}

// RunSnapshot builds the market snapshot and sends it as rich text. The
// rendered message is returned even when delivery fails.
func (b *Bot) RunSnapshot(ctx context.Context) (string, error) {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	snap := b.Snapshot(ctx)
	if snap.Empty() {
		b.logger.Warn().Msg("Snapshot has no usable movers")
	}

	msg := report.SnapshotMessage(snap, b.clock(), b.market.ExchangeLabel)
	b.logger.Debug().Str("message", msg).Msg("Snapshot message")

	err := b.notifier.SendMessage(ctx, msg, true)
	logging.LogDelivery(b.logger, "snapshot", true, len(msg), err)
	if err != nil {
		return msg, fmt.Errorf("sending snapshot: %w", err)
	}
	return msg, nil
}

// RunAlerts evaluates the watchlist once and sends the cycle's message when
// the evaluator says so. Skipped cycles return a zero result and no error.
func (b *Bot) RunAlerts(ctx context.Context) (models.WatchResult, error) {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	log := logging.WithOperation(b.logger, "alerts")
	now := b.clock()

	if len(b.alerts.Watchlist) == 0 {
		log.Info().Msg("Watchlist is empty, skipping alerts")
		return models.WatchResult{}, nil
	}
	if b.alerts.MarketHoursOnly && !utils.IsMarketOpen(now) {
		log.Debug().Str("status", string(utils.MarketStatusAt(now))).Msg("Market closed, skipping alerts")
		return models.WatchResult{}, nil
	}

	res := b.evaluator.Evaluate(ctx, b.alerts.Watchlist)
	if len(res.Rows) == 0 {
		log.Warn().Msg("No quotes for watchlist, skipping")
		return res, nil
	}
	if !res.ShouldSend {
		log.Info().Msg("No alerts this cycle")
		return res, nil
	}

	msg := report.WatchlistMessage(res, now, b.market.ExchangeLabel, b.alerts.ThresholdPercent)
	err := b.notifier.SendMessage(ctx, msg, true)
	logging.LogDelivery(b.logger, "alerts", true, len(msg), err)
	if err != nil {
		return res, fmt.Errorf("sending watchlist: %w", err)
	}

	log.Info().
		Int("rows", len(res.Rows)).
		Bool("triggered", res.AnyTriggered).
		Msg("Watchlist sent")
	return res, nil
}

// quoteContext resolves the symbols mentioned in question and renders their
// quotes. Symbols whose quote fails or comes back empty are left out.
func (b *Bot) quoteContext(ctx context.Context, question string) ([]string, string) {
	dir := b.directory
	symbols := market.ResolveSymbols(question, dir)

	quotes := make([]models.Quote, 0, len(symbols))
	for _, sym := range symbols {
		raw, err := b.provider.Quote(ctx, sym)
		if err != nil {
			log := logging.WithSymbol(b.logger, sym)
			log.Warn().Err(err).Msg("Quote unavailable for question context")
			continue
		}
		if len(raw) == 0 {
			continue
		}
		quotes = append(quotes, market.NormalizeQuote(sym, dir.Name(sym), raw))
	}
	return symbols, report.QuoteContext(quotes)
}

// Answer asks the assistant about question, grounded in quotes for the
// symbols it mentions.
func (b *Bot) Answer(ctx context.Context, question string) (string, error) {
	if b.llm == nil {
		return "", apperrors.ErrNoAssistant
	}

	b.runMu.Lock()
	defer b.runMu.Unlock()

	question = strings.TrimSpace(question)
	symbols, quoteCtx := b.quoteContext(ctx, question)
	b.logger.Debug().Strs("symbols", symbols).Str("context", quoteCtx).Msg("Question context")

	prompt := assistant.UserPrompt(b.clock(), question, quoteCtx)
	answer, err := b.llm.CompleteWithSystem(ctx, assistant.SystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("answering question: %w", err)
	}
	return answer, nil
}

// Reply answers question and sends the answer as plain text. Failures are
// logged and never returned.
func (b *Bot) Reply(ctx context.Context, question string) {
	log := logging.WithOperation(b.logger, "reply")

	answer, err := b.Answer(ctx, question)
	if err != nil {
		log.Error().Err(err).Msg("Could not answer question")
		return
	}

	_ = b.Send(ctx, answer, false)
}

// Send delivers text through the bot's notifier and logs the outcome.
func (b *Bot) Send(ctx context.Context, text string, richText bool) error {
	err := b.notifier.SendMessage(ctx, text, richText)
	logging.LogDelivery(b.logger, "reply", richText, len(text), err)
	return err
}
