// Package provider fetches market data from NSE's public endpoints.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"

	"market-bot/internal/config"
	apperrors "market-bot/internal/errors"
	"market-bot/internal/logging"
	"market-bot/internal/models"
)

// Provider defines the market data operations the bot needs.
type Provider interface {
	// StockCodes returns the symbol directory in any shape market.LoadDirectory accepts.
	StockCodes(ctx context.Context) (any, error)
	TopGainers(ctx context.Context, index string) ([]models.RawRecord, error)
	TopLosers(ctx context.Context, index string) ([]models.RawRecord, error)
	Quote(ctx context.Context, symbol string) (models.RawRecord, error)
}

// Endpoint paths relative to the configured hosts.
const (
	pathVariations = "/api/live-analysis-variations"
	pathQuote      = "/api/quote-equity"
	pathEquityList = "/content/equities/EQUITY_L.csv"
)

// NSEClient implements Provider against nseindia.com. NSE rejects API calls
// without the cookies set by its home page, so the first call primes them.
type NSEClient struct {
	client     *resty.Client
	baseURL    string
	archiveURL string
	logger     zerolog.Logger

	mu     sync.Mutex
	primed bool
}

// NewNSEClient creates a client from provider settings.
func NewNSEClient(cfg config.ProviderConfig, logger zerolog.Logger) *NSEClient {
	client := resty.New()
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	client.SetHeader("Accept", "application/json, text/plain, */*")
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")

	return &NSEClient{
		client:     client,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		archiveURL: strings.TrimRight(cfg.ArchiveURL, "/"),
		logger:     logger.With().Str("component", "nse").Logger(),
	}
}

// prime loads the home page once so the cookie jar holds the session cookies.
// A failed prime is logged and retried on the next call.
func (c *NSEClient) prime(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.primed {
		return
	}

	start := time.Now()
	resp, err := c.client.R().SetContext(ctx).Get(c.baseURL + "/")
	if err == nil && resp.StatusCode() != http.StatusOK {
		err = fmt.Errorf("status %d", resp.StatusCode())
	}
	logging.LogAPICall(c.logger, http.MethodGet, "/", time.Since(start), err)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Cookie priming failed")
		return
	}
	c.primed = true
}

func (c *NSEClient) get(ctx context.Context, url, endpoint, symbol string, query map[string]string) ([]byte, error) {
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(url)
	if err == nil && resp.StatusCode() != http.StatusOK {
		err = fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	logging.LogAPICall(c.logger, http.MethodGet, endpoint, time.Since(start), err)
	if err != nil {
		return nil, apperrors.NewProviderError(endpoint, symbol, err)
	}
	return resp.Body(), nil
}

// equityRow is one line of the EQUITY_L.csv listing.
type equityRow struct {
	Symbol  string `csv:"SYMBOL"`
	Company string `csv:"NAME OF COMPANY"`
}

// StockCodes downloads the equity listing and returns (symbol, name) pairs in
// file order.
func (c *NSEClient) StockCodes(ctx context.Context) (any, error) {
	body, err := c.get(ctx, c.archiveURL+pathEquityList, pathEquityList, "", nil)
	if err != nil {
		return nil, err
	}

	var rows []*equityRow
	if err := gocsv.Unmarshal(bytes.NewReader(body), &rows); err != nil {
		return nil, apperrors.NewProviderError(pathEquityList, "", fmt.Errorf("decoding listing: %w", err))
	}

	pairs := make([][]string, 0, len(rows))
	for _, r := range rows {
		if r == nil || strings.TrimSpace(r.Symbol) == "" {
			continue
		}
		pairs = append(pairs, []string{r.Symbol, r.Company})
	}
	return pairs, nil
}

// TopGainers returns the gainers table for index.
func (c *NSEClient) TopGainers(ctx context.Context, index string) ([]models.RawRecord, error) {
	return c.variations(ctx, "gainers", index)
}

// TopLosers returns the losers table for index.
func (c *NSEClient) TopLosers(ctx context.Context, index string) ([]models.RawRecord, error) {
	// NSE spells it this way.
	return c.variations(ctx, "loosers", index)
}

type variationTable struct {
	Data []models.RawRecord `json:"data"`
}

func (c *NSEClient) variations(ctx context.Context, side, index string) ([]models.RawRecord, error) {
	c.prime(ctx)

	body, err := c.get(ctx, c.baseURL+pathVariations, pathVariations, "", map[string]string{"index": side})
	if err != nil {
		return nil, err
	}

	var tables map[string]json.RawMessage
	if err := json.Unmarshal(body, &tables); err != nil {
		return nil, apperrors.NewProviderError(pathVariations, "", fmt.Errorf("parsing %s: %w", side, err))
	}

	raw, ok := tables[index]
	if !ok {
		return nil, apperrors.NewProviderError(pathVariations, "", fmt.Errorf("index %q not in %s response", index, side))
	}

	var table variationTable
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, apperrors.NewProviderError(pathVariations, "", fmt.Errorf("parsing %s table: %w", index, err))
	}
	return table.Data, nil
}

type quoteResponse struct {
	Info struct {
		CompanyName string `json:"companyName"`
	} `json:"info"`
	PriceInfo struct {
		LastPrice       any `json:"lastPrice"`
		PChange         any `json:"pChange"`
		PreviousClose   any `json:"previousClose"`
		Open            any `json:"open"`
		IntraDayHighLow struct {
			Min any `json:"min"`
			Max any `json:"max"`
		} `json:"intraDayHighLow"`
	} `json:"priceInfo"`
	PreOpenMarket struct {
		TotalTradedVolume any `json:"totalTradedVolume"`
	} `json:"preOpenMarket"`
}

// Quote fetches the equity quote for symbol, flattened to the keys the
// normalizer understands. A payload without price information yields an
// empty record.
func (c *NSEClient) Quote(ctx context.Context, symbol string) (models.RawRecord, error) {
	c.prime(ctx)

	body, err := c.get(ctx, c.baseURL+pathQuote, pathQuote, symbol, map[string]string{"symbol": symbol})
	if err != nil {
		return nil, err
	}

	var q quoteResponse
	if err := json.Unmarshal(body, &q); err != nil {
		return nil, apperrors.NewProviderError(pathQuote, symbol, fmt.Errorf("parsing quote: %w", err))
	}

	if q.PriceInfo.LastPrice == nil && q.PriceInfo.PChange == nil {
		return models.RawRecord{}, nil
	}

	return models.RawRecord{
		"symbol":            symbol,
		"companyName":       q.Info.CompanyName,
		"lastPrice":         q.PriceInfo.LastPrice,
		"pChange":           q.PriceInfo.PChange,
		"previousClose":     q.PriceInfo.PreviousClose,
		"open":              q.PriceInfo.Open,
		"dayHigh":           q.PriceInfo.IntraDayHighLow.Max,
		"dayLow":            q.PriceInfo.IntraDayHighLow.Min,
		"totalTradedVolume": q.PreOpenMarket.TotalTradedVolume,
	}, nil
}
