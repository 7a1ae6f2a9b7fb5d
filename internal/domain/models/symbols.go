package models

// TradingPair is one symbol entry of the exchange metadata.
type TradingPair struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

const StatusTrading = "TRADING"

// SymbolMapping maps a currency code to its tradable symbol against the quote.
// It is built once and only read afterwards.
type SymbolMapping map[string]string

// Lookup returns the symbol for currency, if any.
func (m SymbolMapping) Lookup(currency string) (string, bool) {
	s, ok := m[currency]
	return s, ok
}

// SelfSymbol is the pseudo symbol used for the quote currency against itself, e.g. USDTUSDT.
func SelfSymbol(quote string) string { return quote + quote }
