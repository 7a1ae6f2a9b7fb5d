package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FxPull/internal/domain/models"
	drepo "FxPull/internal/domain/repository"
)

var (
	ErrInvalidQuery = errors.New("invalid rates query")
	ErrNoReport     = errors.New("no backfill has finished yet")
)

const (
	defaultRatesLimit = 1000
	maxRatesLimit     = 50000
)

// RatesUseCase serves stored rates and the last run report to the ops API.
type RatesUseCase struct {
	reader  drepo.RateReader
	reports *ReportStore
}

func NewRatesUseCase(reader drepo.RateReader, reports *ReportStore) *RatesUseCase {
	return &RatesUseCase{reader: reader, reports: reports}
}

type GetRatesParams struct {
	Currency string
	From     time.Time
	To       time.Time
	Limit    int
}

type GetRatesResult struct {
	Currency string           `json:"currency"`
	From     time.Time        `json:"from"`
	To       time.Time        `json:"to"`
	Count    int              `json:"count"`
	Rows     []models.RateRow `json:"rows"`
}

func (uc *RatesUseCase) GetRates(ctx context.Context, p GetRatesParams) (*GetRatesResult, error) {
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		return nil, fmt.Errorf("%w: currency required", ErrInvalidQuery)
	}
	if !p.From.Before(p.To) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidQuery)
	}
	if p.Limit <= 0 {
		p.Limit = defaultRatesLimit
	}
	if p.Limit > maxRatesLimit {
		p.Limit = maxRatesLimit
	}

	rows, err := uc.reader.QueryRates(ctx, p.Currency, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("query rates %s: %w", p.Currency, err)
	}
	if rows == nil {
		rows = []models.RateRow{}
	}

	return &GetRatesResult{
		Currency: p.Currency,
		From:     p.From,
		To:       p.To,
		Count:    len(rows),
		Rows:     rows,
	}, nil
}

// LatestReport returns the report of the last finished run.
func (uc *RatesUseCase) LatestReport() (*models.BackfillReport, error) {
	r, ok := uc.reports.Latest()
	if !ok {
		return nil, ErrNoReport
	}
	return r, nil
}
