package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FxPull/internal/domain/models"
)

func storedRun() *ReportStore {
	store := NewReportStore()
	series := &models.Series{
		Base: "EUR", Quote: "USDT", Symbol: "EURUSDT",
		Start: jan1, End: jan1.Add(day),
		Status: models.StatusComplete,
	}
	for i := 0; i < 24; i++ {
		series.Candles = append(series.Candles, candleAt(jan1.Add(time.Duration(i)*time.Hour), "1.09"))
	}
	store.Save(&models.BackfillReport{RunID: "run-9"}, []*models.Series{series, nil})
	return store
}

func TestGetRatesFromReportStore(t *testing.T) {
	store := storedRun()
	uc := NewRatesUseCase(store, store)

	res, err := uc.GetRates(context.Background(), GetRatesParams{
		Currency: " eur ",
		From:     jan1.Add(2 * time.Hour),
		To:       jan1.Add(5 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, "EUR", res.Currency)
	require.Equal(t, 3, res.Count)
	assert.Equal(t, jan1.Add(2*time.Hour).UnixMilli(), res.Rows[0].OpenTime)
	assert.Equal(t, 1.09, res.Rows[0].Close)
	assert.Equal(t, "EURUSDT", res.Rows[0].Symbol)
}

func TestGetRatesLimitAndUnknown(t *testing.T) {
	store := storedRun()
	uc := NewRatesUseCase(store, store)
	ctx := context.Background()

	res, err := uc.GetRates(ctx, GetRatesParams{Currency: "EUR", From: jan1, To: jan1.Add(day), Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Count)

	res, err = uc.GetRates(ctx, GetRatesParams{Currency: "JPY", From: jan1, To: jan1.Add(day)})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.NotNil(t, res.Rows)
}

func TestGetRatesValidation(t *testing.T) {
	store := storedRun()
	uc := NewRatesUseCase(store, store)

	_, err := uc.GetRates(context.Background(), GetRatesParams{Currency: "", From: jan1, To: jan1.Add(day)})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = uc.GetRates(context.Background(), GetRatesParams{Currency: "EUR", From: jan1, To: jan1})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

type failingReader struct{}

func (failingReader) QueryRates(context.Context, string, time.Time, time.Time, int) ([]models.RateRow, error) {
	return nil, errors.New("clickhouse down")
}

func TestGetRatesReaderError(t *testing.T) {
	uc := NewRatesUseCase(failingReader{}, NewReportStore())

	_, err := uc.GetRates(context.Background(), GetRatesParams{Currency: "EUR", From: jan1, To: jan1.Add(day)})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidQuery)
}

func TestLatestReport(t *testing.T) {
	uc := NewRatesUseCase(NewReportStore(), NewReportStore())
	_, err := uc.LatestReport()
	assert.ErrorIs(t, err, ErrNoReport)

	store := storedRun()
	uc = NewRatesUseCase(store, store)
	r, err := uc.LatestReport()
	require.NoError(t, err)
	assert.Equal(t, "run-9", r.RunID)
}
