package models

import (
	"errors"
	"time"
)

var (
	ErrEmptyLedger   = errors.New("ledger has no transactions")
	ErrMissingColumn = errors.New("ledger column missing")
	ErrInvalidWindow = errors.New("backfill window start must be before end")
)

// Transaction is the subset of a ledger row the backfill needs.
type Transaction struct {
	DestinationCurrency string
	CreatedAt           time.Time
}

// BackfillInput is everything a run needs, derived from the ledger up front.
type BackfillInput struct {
	Currencies []string
	Start      time.Time
	End        time.Time // exclusive
	Quote      string
}

// Validate checks the window and the currency set.
func (in BackfillInput) Validate() error {
	if !in.Start.Before(in.End) {
		return ErrInvalidWindow
	}
	if in.Quote == "" {
		return errors.New("quote currency is required")
	}
	return nil
}
