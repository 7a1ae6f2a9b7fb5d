package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"FxPull/internal/domain/models"
)

var one = decimal.NewFromInt(1)

// GenerateIdentitySeries builds the quote currency's rate against itself: one
// candle per hour from start while open time < end, every price exactly 1.
func GenerateIdentitySeries(start, end time.Time) []models.Candle {
	if !start.Before(end) {
		return nil
	}
	n := int((end.Sub(start) + models.HourlyInterval - 1) / models.HourlyInterval)
	out := make([]models.Candle, 0, n)
	for t := start; t.Before(end); t = t.Add(models.HourlyInterval) {
		out = append(out, models.Candle{
			OpenTime:                 t,
			CloseTime:                models.CloseTimeFor(t),
			Open:                     one,
			High:                     one,
			Low:                      one,
			Close:                    one,
			Volume:                   "0",
			QuoteAssetVolume:         "0",
			TakerBuyBaseAssetVolume:  "0",
			TakerBuyQuoteAssetVolume: "0",
			Ignore:                   "0",
		})
	}
	return out
}
