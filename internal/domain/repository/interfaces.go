package repository

import (
	"context"
	"time"

	"FxPull/internal/domain/models"
)

// KlineSource fetches one page of hourly candles for a symbol.
// Implementations must return candles strictly ascending by open time and
// inside the requested window, or classify the page as an error.
type KlineSource interface {
	FetchPage(ctx context.Context, symbol string, w models.Window, limit int) models.PageResult
}

// SymbolSource lists the exchange's trading pairs.
type SymbolSource interface {
	TradingPairs(ctx context.Context) ([]models.TradingPair, error)
}

// LedgerReader loads the transaction ledger.
type LedgerReader interface {
	ReadTransactions(ctx context.Context) ([]models.Transaction, error)
}

// RateSink receives finished series. WriteSeries may be called concurrently.
type RateSink interface {
	Name() string
	WriteSeries(ctx context.Context, s *models.Series) error
	Flush(ctx context.Context) error
}

// RateReader serves stored rates back to the ops API.
type RateReader interface {
	QueryRates(ctx context.Context, currency string, from, to time.Time, limit int) ([]models.RateRow, error)
}

// Metrics records backfill observations.
type Metrics interface {
	RecordPage(symbol string, status models.PageStatus)
	RecordSeries(currency string, status models.CompletionStatus, candles int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
