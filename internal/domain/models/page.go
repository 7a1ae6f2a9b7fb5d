package models

import "time"

// Window bounds one page request by open time: [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

type PageStatus int

const (
	PageRecords PageStatus = iota
	PageEmpty
	PageError
)

func (s PageStatus) String() string {
	switch s {
	case PageRecords:
		return "records"
	case PageEmpty:
		return "empty"
	case PageError:
		return "error"
	default:
		return "unknown"
	}
}

// PageResult is the classified outcome of a single kline request.
// Candles is non-empty and strictly ascending iff Status is PageRecords.
type PageResult struct {
	Status  PageStatus
	Candles []Candle
	Err     error
}

func RecordsPage(c []Candle) PageResult { return PageResult{Status: PageRecords, Candles: c} }

func EmptyPage() PageResult { return PageResult{Status: PageEmpty} }

func ErrorPage(err error) PageResult { return PageResult{Status: PageError, Err: err} }
