package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-bot/internal/assistant"
	"market-bot/internal/config"
	apperrors "market-bot/internal/errors"
	"market-bot/internal/models"
	"market-bot/internal/notify"
	"market-bot/internal/report"
	"market-bot/pkg/utils"
)

type fakeProvider struct {
	codes    any
	codesErr error
	gainers  []models.RawRecord
	losers   []models.RawRecord
	moverErr error
	quotes   map[string]models.RawRecord
}

func (f *fakeProvider) StockCodes(context.Context) (any, error) {
	return f.codes, f.codesErr
}

func (f *fakeProvider) TopGainers(context.Context, string) ([]models.RawRecord, error) {
	return f.gainers, f.moverErr
}

func (f *fakeProvider) TopLosers(context.Context, string) ([]models.RawRecord, error) {
	return f.losers, f.moverErr
}

func (f *fakeProvider) Quote(_ context.Context, symbol string) (models.RawRecord, error) {
	q, ok := f.quotes[symbol]
	if !ok {
		return nil, apperrors.NewProviderError("/api/quote-equity", symbol, errors.New("not found"))
	}
	return q, nil
}

type sent struct {
	text     string
	richText bool
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []sent
	err  error
}

func (f *fakeNotifier) SendMessage(_ context.Context, text string, richText bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, sent{text, richText})
	return f.err
}

type fakeLLM struct {
	system, user string
	answer       string
	err          error
}

func (f *fakeLLM) CompleteWithSystem(_ context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.answer, f.err
}

// 11:00 IST on a Wednesday.
var tradingTime = time.Date(2024, 3, 6, 11, 0, 0, 0, utils.IndiaLocation)

func testConfig() *config.Config {
	return &config.Config{
		Market: config.MarketConfig{ExchangeLabel: "NSE", Index: "NIFTY", TopN: 5},
		Alerts: config.AlertsConfig{
			Watchlist:          []string{"TCS", "INFY"},
			ThresholdPercent:   2,
			OncePerDay:         true,
			AlwaysSendSnapshot: false,
		},
	}
}

func newTestBot(cfg *config.Config, p *fakeProvider, n *fakeNotifier, llm assistant.LLMClient, now *time.Time) *Bot {
	return New(Options{
		Config:   cfg,
		Provider: p,
		Notifier: n,
		LLM:      llm,
		Logger:   zerolog.Nop(),
		Clock:    func() time.Time { return *now },
	})
}

func TestRunSnapshot(t *testing.T) {
	p := &fakeProvider{
		gainers: []models.RawRecord{
			{"symbol": "ADANIENT", "ltp": "3,105.50", "perChange": 6.0, "trade_quantity": 2_500_000},
			{"symbol": "TCS", "ltp": 4012.1, "perChange": 4.0},
		},
		losers: []models.RawRecord{
			{"symbol": "WIPRO", "ltp": 455, "perChange": -2.0},
		},
	}
	n := &fakeNotifier{}
	now := tradingTime
	b := newTestBot(testConfig(), p, n, nil, &now)

	msg, err := b.RunSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, n.msgs, 1)
	assert.True(t, n.msgs[0].richText)
	assert.Equal(t, msg, n.msgs[0].text)

	assert.Contains(t, msg, "_As of 06-Mar-2024 11:00_")
	assert.Contains(t, msg, "1. *ADANIENT*  +6.00%  (₹3,105.50)")
	assert.Contains(t, msg, "Bias: 🟢 Gainers are stronger in this snapshot.")
	assert.True(t, strings.HasSuffix(msg, report.Disclaimer))
}

func TestRunSnapshotProviderDownStillSends(t *testing.T) {
	p := &fakeProvider{moverErr: errors.New("connection reset")}
	n := &fakeNotifier{}
	now := tradingTime
	b := newTestBot(testConfig(), p, n, nil, &now)

	msg, err := b.RunSnapshot(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, msg, "Top Gainers")
	assert.True(t, strings.HasSuffix(msg, report.Disclaimer))
}

func TestRunSnapshotDeliveryFailurePropagates(t *testing.T) {
	n := &fakeNotifier{err: apperrors.NewDeliveryError("telegram", 400, "Bad Request")}
	now := tradingTime
	b := newTestBot(testConfig(), &fakeProvider{}, n, nil, &now)

	_, err := b.RunSnapshot(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDeliveryFailed)
}

func TestRunAlertsOncePerDay(t *testing.T) {
	p := &fakeProvider{quotes: map[string]models.RawRecord{
		"TCS":  {"pChange": 3.5, "lastPrice": 4012.1},
		"INFY": {"pChange": "0.4", "lastPrice": "1,500"},
	}}
	n := &fakeNotifier{}
	now := tradingTime
	b := newTestBot(testConfig(), p, n, nil, &now)
	ctx := context.Background()

	res, err := b.RunAlerts(ctx)
	require.NoError(t, err)
	assert.True(t, res.AnyTriggered)
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0].text, "⚡ *Watchlist Alerts* (±2.0% or more) (NSE)")
	assert.Contains(t, n.msgs[0].text, "🔥 *TCS* +3.50% (₹4,012.10)")
	assert.Contains(t, n.msgs[0].text, "• *INFY* +0.40% (₹1,500.00)")

	// Same day, larger move: no re-trigger, and with snapshots off nothing is sent.
	p.quotes["TCS"] = models.RawRecord{"pChange": 5.0, "lastPrice": 4100}
	now = tradingTime.Add(time.Hour)
	res, err = b.RunAlerts(ctx)
	require.NoError(t, err)
	assert.False(t, res.AnyTriggered)
	assert.False(t, res.ShouldSend)
	assert.Len(t, n.msgs, 1)

	// Next day re-triggers.
	now = tradingTime.Add(24 * time.Hour)
	res, err = b.RunAlerts(ctx)
	require.NoError(t, err)
	assert.True(t, res.AnyTriggered)
	assert.Len(t, n.msgs, 2)
}

func TestRunAlertsSkips(t *testing.T) {
	ctx := context.Background()

	t.Run("empty watchlist", func(t *testing.T) {
		cfg := testConfig()
		cfg.Alerts.Watchlist = nil
		n := &fakeNotifier{}
		now := tradingTime
		res, err := newTestBot(cfg, &fakeProvider{}, n, nil, &now).RunAlerts(ctx)
		require.NoError(t, err)
		assert.Empty(t, res.Rows)
		assert.Empty(t, n.msgs)
	})

	t.Run("market closed", func(t *testing.T) {
		cfg := testConfig()
		cfg.Alerts.MarketHoursOnly = true
		p := &fakeProvider{quotes: map[string]models.RawRecord{"TCS": {"pChange": 9}}}
		n := &fakeNotifier{}
		sunday := time.Date(2024, 3, 10, 11, 0, 0, 0, utils.IndiaLocation)
		res, err := newTestBot(cfg, p, n, nil, &sunday).RunAlerts(ctx)
		require.NoError(t, err)
		assert.Empty(t, res.Rows)
		assert.Empty(t, n.msgs)
	})

	t.Run("all quotes failed", func(t *testing.T) {
		cfg := testConfig()
		cfg.Alerts.AlwaysSendSnapshot = true
		n := &fakeNotifier{}
		now := tradingTime
		res, err := newTestBot(cfg, &fakeProvider{}, n, nil, &now).RunAlerts(ctx)
		require.NoError(t, err)
		assert.Empty(t, res.Rows)
		assert.Empty(t, n.msgs)
	})
}

func TestRunAlertsAlwaysSnapshot(t *testing.T) {
	cfg := testConfig()
	cfg.Alerts.AlwaysSendSnapshot = true
	cfg.Alerts.ThresholdPercent = 10
	p := &fakeProvider{quotes: map[string]models.RawRecord{"TCS": {"pChange": 1.2}}}
	n := &fakeNotifier{}
	now := tradingTime

	res, err := newTestBot(cfg, p, n, nil, &now).RunAlerts(context.Background())
	require.NoError(t, err)
	assert.True(t, res.ShouldSend)
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0].text, "📌 *Watchlist Snapshot* (NSE)")
	assert.True(t, strings.HasSuffix(n.msgs[0].text, report.WatchlistQuiet))
}

func TestAnswer(t *testing.T) {
	p := &fakeProvider{
		codes: map[string]any{
			"SYMBOL": "NAME OF COMPANY",
			"TCS":    "Tata Consultancy Services Limited",
			"INFY":   "Infosys Limited",
		},
		quotes: map[string]models.RawRecord{
			"TCS": {
				"lastPrice": 4012.1, "pChange": 2.15, "previousClose": 3927.5,
				"dayHigh": 4020, "dayLow": 3921.05, "totalTradedVolume": 123456,
			},
		},
	}
	llm := &fakeLLM{answer: "Steady. " + assistant.ClosingSentence}
	now := tradingTime
	b := newTestBot(testConfig(), p, &fakeNotifier{}, llm, &now)
	ctx := context.Background()
	require.NoError(t, b.LoadDirectory(ctx))
	assert.Equal(t, 2, b.Directory().Len())

	answer, err := b.Answer(ctx, "  TCS and INFY look strong?  ")
	require.NoError(t, err)
	assert.Equal(t, llm.answer, answer)

	assert.Equal(t, assistant.SystemPrompt, llm.system)
	assert.Contains(t, llm.user, "Date: 06-Mar-2024")
	assert.Contains(t, llm.user, "User question:\nTCS and INFY look strong?\n")
	assert.Contains(t, llm.user,
		"TCS (Tata Consultancy Services Limited): Price ₹4012.1, Change 2.15%, PrevClose ₹3927.5, DayRange ₹3921.05 - ₹4020, Volume 123456")
	// INFY's quote failed, so it is left out of the context.
	assert.NotContains(t, llm.user, "INFY (")
}

func TestAnswerWithoutSymbols(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	now := tradingTime
	b := newTestBot(testConfig(), &fakeProvider{}, &fakeNotifier{}, llm, &now)

	_, err := b.Answer(context.Background(), "what about HCL")
	require.NoError(t, err)
	assert.Contains(t, llm.user, report.NoSymbolsContext)
}

func TestAnswerWithoutAssistant(t *testing.T) {
	now := tradingTime
	b := newTestBot(testConfig(), &fakeProvider{}, &fakeNotifier{}, nil, &now)

	_, err := b.Answer(context.Background(), "TCS?")
	assert.ErrorIs(t, err, apperrors.ErrNoAssistant)
}

func TestReplySendsPlainTextAndSwallowsErrors(t *testing.T) {
	llm := &fakeLLM{answer: "Use *care* with_underscores"}
	n := &fakeNotifier{err: apperrors.NewDeliveryError("telegram", 400, "can't parse entities")}
	now := tradingTime
	b := newTestBot(testConfig(), &fakeProvider{}, n, llm, &now)

	b.Reply(context.Background(), "TCS?")
	require.Len(t, n.msgs, 1)
	assert.False(t, n.msgs[0].richText)
	assert.Equal(t, llm.answer, n.msgs[0].text)

	llm.err = errors.New("model offline")
	b.Reply(context.Background(), "TCS?")
	assert.Len(t, n.msgs, 1)
}

func TestLoadDirectoryFailureKeepsEmpty(t *testing.T) {
	now := tradingTime
	b := newTestBot(testConfig(), &fakeProvider{codesErr: errors.New("timeout")}, &fakeNotifier{}, nil, &now)

	err := b.LoadDirectory(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, b.Directory().Len())
}

func TestAnswerSkipsEmptyQuote(t *testing.T) {
	p := &fakeProvider{
		codes:  [][]string{{"ZZZ", "Zed Industries"}},
		quotes: map[string]models.RawRecord{"ZZZ": {}},
	}
	llm := &fakeLLM{answer: "ok"}
	now := tradingTime
	b := newTestBot(testConfig(), p, &fakeNotifier{}, llm, &now)
	require.NoError(t, b.LoadDirectory(context.Background()))

	_, err := b.Answer(context.Background(), "how is ZZZ")
	require.NoError(t, err)
	assert.NotContains(t, llm.user, "ZZZ (")
	assert.Contains(t, llm.user, report.NoSymbolsContext)
}

func TestLoadDirectoryConcurrent(t *testing.T) {
	p := &fakeProvider{codes: [][]string{{"TCS", "Tata Consultancy Services Limited"}, {"INFY", "Infosys Limited"}}}
	now := tradingTime
	b := newTestBot(testConfig(), p, &fakeNotifier{}, nil, &now)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, b.LoadDirectory(context.Background()))
			_ = b.Directory().Len()
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, b.Directory().Len())
}

var _ notify.Notifier = (*fakeNotifier)(nil)
