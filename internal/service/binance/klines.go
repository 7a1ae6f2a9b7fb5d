package binance

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"FxPull/internal/domain/models"
)

// Binance kline array layout:
//
//	[0]  open time (ms)     [6]  close time (ms)
//	[1]  open               [7]  quote asset volume
//	[2]  high               [8]  number of trades
//	[3]  low                [9]  taker buy base volume
//	[4]  close              [10] taker buy quote volume
//	[5]  volume             [11] ignore
const minKlineFields = 7

func parseKlines(raw [][]json.RawMessage) ([]models.Candle, error) {
	out := make([]models.Candle, 0, len(raw))
	for i, r := range raw {
		if len(r) < minKlineFields {
			return nil, fmt.Errorf("%w: kline[%d] has %d fields, want >= %d", ErrMalformedPage, i, len(r), minKlineFields)
		}

		openMs, err := parseInt64(r[0])
		if err != nil {
			return nil, fmt.Errorf("%w: kline[%d] open time: %v", ErrMalformedPage, i, err)
		}
		closeMs, err := parseInt64(r[6])
		if err != nil {
			return nil, fmt.Errorf("%w: kline[%d] close time: %v", ErrMalformedPage, i, err)
		}

		var prices [4]decimal.Decimal
		for j := range prices {
			p, err := decimal.NewFromString(jsonString(r[1+j]))
			if err != nil {
				return nil, fmt.Errorf("%w: kline[%d] price field %d: %v", ErrMalformedPage, i, 1+j, err)
			}
			prices[j] = p
		}

		c := models.Candle{
			OpenTime:  models.UnixMilli(openMs),
			CloseTime: models.UnixMilli(closeMs),
			Open:      prices[0],
			High:      prices[1],
			Low:       prices[2],
			Close:     prices[3],
			Volume:    jsonString(r[5]),
		}
		c.QuoteAssetVolume = optString(r, 7)
		if len(r) > 8 {
			if n, err := parseInt64(r[8]); err == nil {
				c.NumberOfTrades = n
			}
		}
		c.TakerBuyBaseAssetVolume = optString(r, 9)
		c.TakerBuyQuoteAssetVolume = optString(r, 10)
		c.Ignore = optString(r, 11)

		out = append(out, c)
	}
	return out, nil
}

// checkPage enforces the contract the paginator's cursor relies on: open
// times strictly ascending and inside the requested window.
func checkPage(w models.Window, candles []models.Candle) error {
	for i, c := range candles {
		if c.OpenTime.Before(w.Start) || !c.OpenTime.Before(w.End) {
			return fmt.Errorf("%w: kline[%d] open time %s outside [%s, %s)", ErrMalformedPage, i,
				c.OpenTime.Format("2006-01-02T15:04:05.000Z07:00"), w.Start.Format("2006-01-02T15:04:05Z07:00"), w.End.Format("2006-01-02T15:04:05Z07:00"))
		}
		if c.CloseTime.Before(c.OpenTime) {
			return fmt.Errorf("%w: kline[%d] closes before it opens", ErrMalformedPage, i)
		}
		if i > 0 && !c.OpenTime.After(candles[i-1].CloseTime) {
			return fmt.Errorf("%w: kline[%d] overlaps or precedes kline[%d]", ErrMalformedPage, i, i-1)
		}
	}
	return nil
}

func parseInt64(raw json.RawMessage) (int64, error) {
	var v int64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, nil
	}
	// some proxies quote numbers
	return strconv.ParseInt(jsonString(raw), 10, 64)
}

func jsonString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw)
	}
	return s
}

func optString(r []json.RawMessage, i int) string {
	if i >= len(r) {
		return ""
	}
	return jsonString(r[i])
}
