package usecase

import (
	"fmt"
	"strings"

	"FxPull/internal/domain/models"
	"FxPull/pkg/util"
)

// BuildInput derives a run's input from the ledger: every distinct
// destination currency, over [first day 00:00, day after the last) UTC.
// Days are the calendar dates as written in each timestamp's own offset.
func BuildInput(txs []models.Transaction, quote string) (models.BackfillInput, error) {
	if len(txs) == 0 {
		return models.BackfillInput{}, models.ErrEmptyLedger
	}

	codes := make([]string, 0, len(txs))
	first, last := txs[0].CreatedAt, txs[0].CreatedAt
	for _, tx := range txs {
		codes = append(codes, tx.DestinationCurrency)
		if tx.CreatedAt.Before(first) {
			first = tx.CreatedAt
		}
		if tx.CreatedAt.After(last) {
			last = tx.CreatedAt
		}
	}

	in := models.BackfillInput{
		Currencies: util.UniqueUpper(codes),
		Start:      util.StartOfDay(first),
		End:        util.NextDay(last),
		Quote:      strings.ToUpper(quote),
	}
	if len(in.Currencies) == 0 {
		return models.BackfillInput{}, fmt.Errorf("%w: no destination currencies", models.ErrEmptyLedger)
	}
	return in, nil
}
