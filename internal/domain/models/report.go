package models

import "time"

// CurrencyResult is the outcome of one currency in a run.
type CurrencyResult struct {
	Currency  string           `json:"currency"`
	Symbol    string           `json:"symbol"`
	Candles   int              `json:"candles"`
	Pages     int              `json:"pages"`
	Synthetic bool             `json:"synthetic"`
	Status    CompletionStatus `json:"status"`
	Error     string           `json:"error,omitempty"`
	Succeeded bool             `json:"succeeded"`
}

// BackfillReport summarizes one run. The tally is informational only.
type BackfillReport struct {
	RunID       string           `json:"run_id"`
	Start       time.Time        `json:"start"`
	End         time.Time        `json:"end"`
	Quote       string           `json:"quote"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  time.Time        `json:"finished_at"`
	Supported   []string         `json:"supported"`
	Unsupported []string         `json:"unsupported"`
	Results     []CurrencyResult `json:"results"`
	Succeeded   int              `json:"succeeded"`
	Failed      int              `json:"failed"`
}
