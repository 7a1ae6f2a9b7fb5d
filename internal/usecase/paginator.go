package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FxPull/internal/domain/models"
	drepo "FxPull/internal/domain/repository"
	applogger "FxPull/pkg/logger"
)

// ErrOverlappingPage is reported when a page starts before the previous one closed.
var ErrOverlappingPage = errors.New("page overlaps previous candles")

// PaginatorConfig bounds how a window is split into requests.
type PaginatorConfig struct {
	PageSize int           // records per request, the exchange cap
	PageSpan time.Duration // time covered by one request
	MaxPages int           // requests per symbol before giving up
}

// DefaultPaginatorConfig matches the Binance klines cap: 1000 records, 30 days, 50 pages.
func DefaultPaginatorConfig() PaginatorConfig {
	return PaginatorConfig{PageSize: 1000, PageSpan: 30 * 24 * time.Hour, MaxPages: 50}
}

// Paginator walks a [start, end) window page by page, one request at a time.
type Paginator struct {
	source  drepo.KlineSource
	cfg     PaginatorConfig
	metrics drepo.Metrics
	l       *applogger.Logger
}

// NewPaginator creates a Paginator. Zero config fields fall back to the defaults.
func NewPaginator(source drepo.KlineSource, cfg PaginatorConfig, metrics drepo.Metrics, l *applogger.Logger) *Paginator {
	def := DefaultPaginatorConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.PageSpan <= 0 {
		cfg.PageSpan = def.PageSpan
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = def.MaxPages
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &Paginator{source: source, cfg: cfg, metrics: metrics, l: l}
}

// Paginate collects every hourly candle of symbol with open time in [start, end).
//
// The result is always ordered and non-overlapping. Failures never surface as
// an error return: a failed or empty page ends the walk and the candles
// gathered so far come back with a partial status.
func (p *Paginator) Paginate(ctx context.Context, symbol string, start, end time.Time) models.FetchResult {
	var (
		out   []models.Candle
		pages int
		cur   = start
		// set when the previous page covered up to end but hit the cap
		fullAtEnd bool
	)

	log := p.l.With(applogger.String("symbol", symbol))

	for cur.Before(end) && pages < p.cfg.MaxPages {
		pageEnd := cur.Add(p.cfg.PageSpan)
		if pageEnd.After(end) {
			pageEnd = end
		}

		res := p.source.FetchPage(ctx, symbol, models.Window{Start: cur, End: pageEnd}, p.cfg.PageSize)
		pages++
		p.recordPage(symbol, res.Status)

		switch res.Status {
		case models.PageError:
			log.Warn("page fetch failed, keeping partial series",
				applogger.Int("page", pages),
				applogger.Time("from", cur),
				applogger.Int("candles", len(out)),
				applogger.Error(res.Err),
			)
			return models.FetchResult{Candles: out, Status: models.StatusPartialNetworkError, Pages: pages, Err: res.Err}

		case models.PageEmpty:
			if fullAtEnd && pageEnd.Equal(end) {
				return models.FetchResult{Candles: out, Status: models.StatusComplete, Pages: pages}
			}
			log.Warn("empty page, no more data",
				applogger.Int("page", pages),
				applogger.Time("from", cur),
				applogger.Int("candles", len(out)),
			)
			return models.FetchResult{Candles: out, Status: models.StatusPartialNoData, Pages: pages}
		}

		if len(res.Candles) == 0 {
			return models.FetchResult{Candles: out, Status: models.StatusPartialNoData, Pages: pages}
		}
		if n := len(out); n > 0 && !res.Candles[0].OpenTime.After(out[n-1].CloseTime) {
			err := fmt.Errorf("%w: %s opens at %s, previous closed at %s", ErrOverlappingPage, symbol,
				res.Candles[0].OpenTime.Format(time.RFC3339), out[n-1].CloseTime.Format(time.RFC3339Nano))
			log.Warn("overlapping page rejected", applogger.Int("page", pages), applogger.Error(err))
			return models.FetchResult{Candles: out, Status: models.StatusPartialNetworkError, Pages: pages, Err: err}
		}

		out = append(out, res.Candles...)
		log.Debug("page appended",
			applogger.Int("page", pages),
			applogger.Int("records", len(res.Candles)),
			applogger.Int("candles", len(out)),
		)

		if pageEnd.Equal(end) && len(res.Candles) < p.cfg.PageSize {
			return models.FetchResult{Candles: out, Status: models.StatusComplete, Pages: pages}
		}
		fullAtEnd = pageEnd.Equal(end)
		cur = res.Candles[len(res.Candles)-1].OpenTime.Add(time.Millisecond)
	}

	if !cur.Before(end) {
		return models.FetchResult{Candles: out, Status: models.StatusComplete, Pages: pages}
	}

	log.Warn("page budget exhausted",
		applogger.Int("pages", pages),
		applogger.Time("reached", cur),
		applogger.Int("candles", len(out)),
	)
	return models.FetchResult{Candles: out, Status: models.StatusPartialBudgetExhausted, Pages: pages}
}

func (p *Paginator) recordPage(symbol string, status models.PageStatus) {
	if p.metrics != nil {
		p.metrics.RecordPage(symbol, status)
	}
}
