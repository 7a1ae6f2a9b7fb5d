package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HourlyInterval is the only candle resolution the backfill requests.
const HourlyInterval = time.Hour

// Candle is one closed 1h OHLC record as reported by the exchange.
// Fields after Volume are passed through untouched.
type Candle struct {
	OpenTime  time.Time
	CloseTime time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    string

	QuoteAssetVolume         string
	NumberOfTrades           int64
	TakerBuyBaseAssetVolume  string
	TakerBuyQuoteAssetVolume string
	Ignore                   string
}

// CloseTimeFor returns the inclusive close instant of the hourly candle opening at open.
func CloseTimeFor(open time.Time) time.Time {
	return open.Add(HourlyInterval - time.Millisecond)
}

// UnixMilli converts a millisecond timestamp into a UTC time.
func UnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
