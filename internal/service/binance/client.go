package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"FxPull/internal/domain/models"
	drepo "FxPull/internal/domain/repository"
	"FxPull/internal/service/ratelimit"
	xhttp "FxPull/pkg/http"
	applogger "FxPull/pkg/logger"
)

const (
	DefaultBaseURL = "https://api.binance.com"

	klinesPath       = "/api/v3/klines"
	exchangeInfoPath = "/api/v3/exchangeInfo"
)

// ErrMalformedPage marks a kline response that breaks the ordering or window contract.
var ErrMalformedPage = errors.New("malformed kline page")

// Client talks to the Binance spot REST API. Every request, klines or
// metadata, takes a token from the shared limiter first.
type Client struct {
	baseURL  string
	interval string
	retries  int
	// first metadata retry delay, grows exponentially
	retryInitial time.Duration

	pages   *xhttp.Client
	meta    *xhttp.Client
	limiter *ratelimit.Limiter
	metrics drepo.Metrics
	l       *applogger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithPageTimeout bounds a single kline request.
func WithPageTimeout(d time.Duration) Option {
	return func(c *Client) { c.pages = xhttp.NewClient(xhttp.WithTimeout(d)) }
}

// WithMetadataTimeout bounds a single exchangeInfo request.
func WithMetadataTimeout(d time.Duration) Option {
	return func(c *Client) { c.meta = xhttp.NewClient(xhttp.WithTimeout(d)) }
}

// WithMetadataRetries sets how many times exchangeInfo is retried on transient failures.
func WithMetadataRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithMetrics records request latency.
func WithMetrics(m drepo.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.l = l }
}

// New creates a Binance client rooted at baseURL.
func New(baseURL string, limiter *ratelimit.Limiter, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:      baseURL,
		interval:     "1h",
		retries:      3,
		retryInitial: 500 * time.Millisecond,
		pages:        xhttp.NewClient(xhttp.WithTimeout(30 * time.Second)),
		meta:         xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
		limiter:      limiter,
		l:            applogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPage requests hourly klines with open time in the half-open window
// [w.Start, w.End). It never retries; any failure is returned as an error page.
func (c *Client) FetchPage(ctx context.Context, symbol string, w models.Window, limit int) models.PageResult {
	if err := c.limiter.Wait(ctx); err != nil {
		return models.ErrorPage(fmt.Errorf("rate limit wait: %w", err))
	}

	start := time.Now()
	var raw [][]json.RawMessage
	err := c.pages.SendAndParse(ctx, &xhttp.RequestOptions{
		URL: c.baseURL + klinesPath,
		QueryParams: url.Values{
			"symbol":    {symbol},
			"interval":  {c.interval},
			"startTime": {strconv.FormatInt(w.Start.UnixMilli(), 10)},
			"endTime":   {strconv.FormatInt(w.End.UnixMilli()-1, 10)},
			"limit":     {strconv.Itoa(limit)},
		},
	}, &raw)
	c.observe("klines", start)
	if err != nil {
		return models.ErrorPage(fmt.Errorf("klines %s: %w", symbol, err))
	}
	if len(raw) == 0 {
		return models.EmptyPage()
	}

	candles, err := parseKlines(raw)
	if err != nil {
		return models.ErrorPage(fmt.Errorf("klines %s: %w", symbol, err))
	}
	if len(candles) > limit {
		return models.ErrorPage(fmt.Errorf("klines %s: %w: %d records over limit %d", symbol, ErrMalformedPage, len(candles), limit))
	}
	if err := checkPage(w, candles); err != nil {
		return models.ErrorPage(fmt.Errorf("klines %s: %w", symbol, err))
	}

	c.l.Debug("kline page fetched",
		applogger.String("symbol", symbol),
		applogger.Time("from", w.Start),
		applogger.Time("to", w.End),
		applogger.Int("records", len(candles)),
	)
	return models.RecordsPage(candles)
}

type exchangeInfo struct {
	Symbols []models.TradingPair `json:"symbols"`
}

// TradingPairs fetches the exchange symbol list, retrying transient failures
// with exponential backoff.
func (c *Client) TradingPairs(ctx context.Context) ([]models.TradingPair, error) {
	var info exchangeInfo
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		start := time.Now()
		err := c.meta.SendAndParse(ctx, &xhttp.RequestOptions{URL: c.baseURL + exchangeInfoPath}, &info)
		c.observe("exchange_info", start)
		if err != nil && !xhttp.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		if err != nil {
			c.l.Warn("exchange info request failed", applogger.Error(err))
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInitial
	b.MaxInterval = 5 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.retries)), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("exchange info: %w", err)
	}
	return info.Symbols, nil
}

func (c *Client) observe(op string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordLatency(op, time.Since(start).Seconds())
	}
}
