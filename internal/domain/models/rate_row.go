package models

// RateRow is the flattened, numeric form of a candle that every sink writes.
type RateRow struct {
	OpenTime                 int64   `json:"open_time"`
	Open                     float64 `json:"open"`
	High                     float64 `json:"high"`
	Low                      float64 `json:"low"`
	Close                    float64 `json:"close"`
	Volume                   string  `json:"volume"`
	CloseTime                int64   `json:"close_time"`
	QuoteAssetVolume         string  `json:"quote_asset_volume"`
	NumberOfTrades           int64   `json:"number_of_trades"`
	TakerBuyBaseAssetVolume  string  `json:"taker_buy_base_asset_volume"`
	TakerBuyQuoteAssetVolume string  `json:"taker_buy_quote_asset_volume"`
	Ignore                   string  `json:"ignore"`
	Symbol                   string  `json:"symbol"`
	BaseCurrency             string  `json:"base_currency"`
	QuoteCurrency            string  `json:"quote_currency"`
}

// RateColumns is the column order of the combined table.
var RateColumns = []string{
	"open_time", "open", "high", "low", "close", "volume",
	"close_time", "quote_asset_volume", "number_of_trades",
	"taker_buy_base_asset_volume", "taker_buy_quote_asset_volume", "ignore",
	"symbol", "base_currency", "quote_currency",
}

// Rows flattens the series, tagging each row with its pair metadata.
func (s *Series) Rows() []RateRow {
	rows := make([]RateRow, 0, len(s.Candles))
	for _, c := range s.Candles {
		rows = append(rows, RateRow{
			OpenTime:                 c.OpenTime.UnixMilli(),
			Open:                     c.Open.InexactFloat64(),
			High:                     c.High.InexactFloat64(),
			Low:                      c.Low.InexactFloat64(),
			Close:                    c.Close.InexactFloat64(),
			Volume:                   c.Volume,
			CloseTime:                c.CloseTime.UnixMilli(),
			QuoteAssetVolume:         c.QuoteAssetVolume,
			NumberOfTrades:           c.NumberOfTrades,
			TakerBuyBaseAssetVolume:  c.TakerBuyBaseAssetVolume,
			TakerBuyQuoteAssetVolume: c.TakerBuyQuoteAssetVolume,
			Ignore:                   c.Ignore,
			Symbol:                   s.Symbol,
			BaseCurrency:             s.Base,
			QuoteCurrency:            s.Quote,
		})
	}
	return rows
}
