package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"FxPull/internal/domain/models"
)

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func hourlySeries(base, symbol string, hours int, price string) *models.Series {
	p := decimal.RequireFromString(price)
	s := &models.Series{
		Base: base, Quote: "USDT", Symbol: symbol,
		Start: jan1, End: jan1.Add(time.Duration(hours) * time.Hour),
		Status: models.StatusComplete,
	}
	for i := 0; i < hours; i++ {
		open := jan1.Add(time.Duration(i) * time.Hour)
		s.Candles = append(s.Candles, models.Candle{
			OpenTime: open, CloseTime: models.CloseTimeFor(open),
			Open: p, High: p, Low: p, Close: p,
			Volume: "3.5", QuoteAssetVolume: "7", NumberOfTrades: 11,
			TakerBuyBaseAssetVolume: "1", TakerBuyQuoteAssetVolume: "2", Ignore: "0",
		})
	}
	return s
}
