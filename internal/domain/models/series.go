package models

import "time"

// CompletionStatus tells a caller how much of the requested window a series covers.
type CompletionStatus string

const (
	StatusComplete               CompletionStatus = "complete"
	StatusPartialNetworkError    CompletionStatus = "partial_network_error"
	StatusPartialBudgetExhausted CompletionStatus = "partial_budget_exhausted"
	StatusPartialNoData          CompletionStatus = "partial_no_data"
)

// IsPartial reports whether the status marks an incomplete series.
func (s CompletionStatus) IsPartial() bool { return s != StatusComplete }

// FetchResult is what the paginator hands back for one symbol.
type FetchResult struct {
	Candles []Candle
	Status  CompletionStatus
	Pages   int
	Err     error // last page error, only for StatusPartialNetworkError
}

// Series is the rate history of one base/quote pair over [Start, End).
type Series struct {
	Base      string
	Quote     string
	Symbol    string
	Start     time.Time
	End       time.Time
	Synthetic bool
	Status    CompletionStatus
	Pages     int
	Candles   []Candle
}

// Len returns the number of candles.
func (s *Series) Len() int { return len(s.Candles) }

// Empty reports whether the series carries no candles.
func (s *Series) Empty() bool { return len(s.Candles) == 0 }
