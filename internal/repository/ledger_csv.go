package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"FxPull/internal/domain/models"
	xutil "FxPull/pkg/util"
)

// CSVLedger reads transactions from a CSV file with a header row.
type CSVLedger struct {
	path            string
	currencyColumn  string
	timestampColumn string
}

func NewCSVLedger(path, currencyColumn, timestampColumn string) *CSVLedger {
	return &CSVLedger{path: path, currencyColumn: currencyColumn, timestampColumn: timestampColumn}
}

// ReadTransactions loads every row that names a destination currency.
func (r *CSVLedger) ReadTransactions(ctx context.Context) ([]models.Transaction, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	txs, err := r.parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("ledger %s: %w", r.path, err)
	}
	return txs, nil
}

func (r *CSVLedger) parse(ctx context.Context, src io.Reader) ([]models.Transaction, error) {
	cr := csv.NewReader(src)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, models.ErrEmptyLedger
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	curIdx, tsIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case strings.EqualFold(name, r.currencyColumn):
			curIdx = i
		case strings.EqualFold(name, r.timestampColumn):
			tsIdx = i
		}
	}
	if curIdx < 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrMissingColumn, r.currencyColumn)
	}
	if tsIdx < 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrMissingColumn, r.timestampColumn)
	}

	var txs []models.Transaction
	for line := 2; ; line++ {
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		currency := strings.ToUpper(strings.TrimSpace(rec[curIdx]))
		if currency == "" {
			continue
		}
		ts, ok := xutil.ParseTime(rec[tsIdx])
		if !ok {
			return nil, fmt.Errorf("line %d: unparseable %s %q", line, r.timestampColumn, rec[tsIdx])
		}
		txs = append(txs, models.Transaction{DestinationCurrency: currency, CreatedAt: ts})
	}

	if len(txs) == 0 {
		return nil, models.ErrEmptyLedger
	}
	return txs, nil
}
