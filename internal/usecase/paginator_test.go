package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FxPull/internal/domain/models"
)

func assertOrdered(t *testing.T, candles []models.Candle) {
	t.Helper()
	for i := 1; i < len(candles); i++ {
		require.True(t, candles[i].OpenTime.After(candles[i-1].OpenTime), "candle %d not ascending", i)
		require.False(t, candles[i].OpenTime.Before(candles[i-1].CloseTime.Add(time.Millisecond)), "candle %d overlaps", i)
	}
}

func TestPaginateThreeLedgerDays(t *testing.T) {
	ex := newFakeExchange().listed("BTCUSDT", jan1.Add(-365*day), jan1.Add(365*day))
	p := NewPaginator(ex, DefaultPaginatorConfig(), nil, nil)

	res := p.Paginate(context.Background(), "BTCUSDT", jan1, jan1.Add(3*day))

	assert.Equal(t, models.StatusComplete, res.Status)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 1, ex.callCount("BTCUSDT"))
	require.Len(t, res.Candles, 72)
	assert.True(t, res.Candles[0].OpenTime.Equal(jan1))
	assert.Equal(t, time.Date(2024, 1, 3, 23, 59, 59, 999_000_000, time.UTC), res.Candles[71].CloseTime)
	assertOrdered(t, res.Candles)
}

func TestPaginateTwoLedgerDays(t *testing.T) {
	ex := newFakeExchange().listed("BTCUSDT", jan1.Add(-day), jan1.Add(10*day))
	p := NewPaginator(ex, DefaultPaginatorConfig(), nil, nil)

	res := p.Paginate(context.Background(), "BTCUSDT", jan1, jan1.Add(2*day))

	assert.Equal(t, models.StatusComplete, res.Status)
	require.Len(t, res.Candles, 48)
	assert.Equal(t, time.Date(2024, 1, 2, 23, 59, 59, 999_000_000, time.UTC), res.Candles[47].CloseTime)
}

func TestPaginateSpansSeveralPages(t *testing.T) {
	ex := newFakeExchange().listed("ETHUSDT", jan1, jan1.Add(400*day))
	p := NewPaginator(ex, DefaultPaginatorConfig(), nil, nil)

	res := p.Paginate(context.Background(), "ETHUSDT", jan1, jan1.Add(95*day))

	assert.Equal(t, models.StatusComplete, res.Status)
	assert.GreaterOrEqual(t, res.Pages, 4)
	assert.Equal(t, res.Pages, ex.callCount("ETHUSDT"))
	require.Len(t, res.Candles, 95*24)
	assertOrdered(t, res.Candles)

	// consecutive windows never leave a gap
	ws := ex.windows["ETHUSDT"]
	for i := 1; i < len(ws); i++ {
		assert.False(t, ws[i].Start.After(ws[i-1].End), "gap before window %d", i)
	}
	assert.True(t, ws[len(ws)-1].End.Equal(jan1.Add(95*day)))
}

func TestPaginateRespectsPageBudget(t *testing.T) {
	ex := newFakeExchange().listed("BTCUSDT", jan1.Add(-day), jan1.Add(10*365*day))
	m := newFakeMetrics()
	p := NewPaginator(ex, DefaultPaginatorConfig(), m, nil)

	// five years needs ~61 pages of 30 days
	res := p.Paginate(context.Background(), "BTCUSDT", jan1, jan1.Add(5*365*day))

	assert.Equal(t, models.StatusPartialBudgetExhausted, res.Status)
	assert.Equal(t, 50, res.Pages)
	assert.Equal(t, 50, ex.callCount("BTCUSDT"))
	assert.Len(t, m.pages, 50)
	assert.Len(t, res.Candles, 50*720)
	assertOrdered(t, res.Candles)
}

func TestPaginateSmallBudget(t *testing.T) {
	ex := newFakeExchange().listed("BTCUSDT", jan1, jan1.Add(30*day))
	p := NewPaginator(ex, PaginatorConfig{PageSize: 10, PageSpan: day, MaxPages: 3}, nil, nil)

	res := p.Paginate(context.Background(), "BTCUSDT", jan1, jan1.Add(10*day))

	assert.Equal(t, models.StatusPartialBudgetExhausted, res.Status)
	assert.Equal(t, 3, res.Pages)
	assert.Len(t, res.Candles, 30)
	assertOrdered(t, res.Candles)
}

func TestPaginateStopsOnError(t *testing.T) {
	ex := newFakeExchange().listed("BTCUSDT", jan1, jan1.Add(200*day))
	ex.failAt["BTCUSDT"] = 3
	m := newFakeMetrics()
	p := NewPaginator(ex, DefaultPaginatorConfig(), m, nil)

	res := p.Paginate(context.Background(), "BTCUSDT", jan1, jan1.Add(120*day))

	assert.Equal(t, models.StatusPartialNetworkError, res.Status)
	assert.ErrorIs(t, res.Err, errUpstream)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, 3, ex.callCount("BTCUSDT"), "failed pages are not retried")

	// exactly the two pages before the failure
	clean := NewPaginator(newFakeExchange().listed("BTCUSDT", jan1, jan1.Add(200*day)),
		PaginatorConfig{MaxPages: 2}, nil, nil).Paginate(context.Background(), "BTCUSDT", jan1, jan1.Add(120*day))
	assert.Equal(t, clean.Candles, res.Candles)
	assert.Equal(t, models.PageError, m.pages[2].status)
}

func TestPaginateEmptyFirstPage(t *testing.T) {
	ex := newFakeExchange()
	p := NewPaginator(ex, DefaultPaginatorConfig(), nil, nil)

	res := p.Paginate(context.Background(), "NEWUSDT", jan1, jan1.Add(3*day))

	assert.Equal(t, models.StatusPartialNoData, res.Status)
	assert.Empty(t, res.Candles)
	assert.Equal(t, 1, res.Pages)
}

func TestPaginateListingEndsMidWindow(t *testing.T) {
	// delisted after 40 days; the second page comes back empty
	ex := newFakeExchange().listed("OLDUSDT", jan1.Add(-day), jan1.Add(40*day))
	p := NewPaginator(ex, DefaultPaginatorConfig(), nil, nil)

	res := p.Paginate(context.Background(), "OLDUSDT", jan1, jan1.Add(90*day))

	assert.Equal(t, models.StatusPartialNoData, res.Status)
	assert.Len(t, res.Candles, 40*24)
	assert.Equal(t, 3, res.Pages)
}

func TestPaginateFullFinalPageThenEmpty(t *testing.T) {
	ex := newFakeExchange().listed("BTCUSDT", jan1, jan1.Add(10*day))
	p := NewPaginator(ex, PaginatorConfig{PageSize: 24, PageSpan: 30 * day, MaxPages: 5}, nil, nil)

	res := p.Paginate(context.Background(), "BTCUSDT", jan1, jan1.Add(day))

	assert.Equal(t, models.StatusComplete, res.Status)
	assert.Len(t, res.Candles, 24)
	assert.Equal(t, 2, res.Pages)
}

func TestPaginateRejectsOverlap(t *testing.T) {
	ex := newFakeExchange().listed("BTCUSDT", jan1.Add(-day), jan1.Add(100*day))
	ex.overlap = true
	p := NewPaginator(ex, PaginatorConfig{PageSize: 24, PageSpan: day, MaxPages: 10}, nil, nil)

	res := p.Paginate(context.Background(), "BTCUSDT", jan1, jan1.Add(5*day))

	assert.Equal(t, models.StatusPartialNetworkError, res.Status)
	assert.ErrorIs(t, res.Err, ErrOverlappingPage)
	assert.Len(t, res.Candles, 24)
	assertOrdered(t, res.Candles)
}

func TestPaginateIsIdempotent(t *testing.T) {
	ex := newFakeExchange().listed("BTCUSDT", jan1, jan1.Add(100*day))
	p := NewPaginator(ex, DefaultPaginatorConfig(), nil, nil)

	a := p.Paginate(context.Background(), "BTCUSDT", jan1.Add(5*day), jan1.Add(70*day))
	b := p.Paginate(context.Background(), "BTCUSDT", jan1.Add(5*day), jan1.Add(70*day))

	assert.Equal(t, a, b)
}

func TestPaginateEmptyWindow(t *testing.T) {
	ex := newFakeExchange().listed("BTCUSDT", jan1, jan1.Add(day))
	p := NewPaginator(ex, DefaultPaginatorConfig(), nil, nil)

	res := p.Paginate(context.Background(), "BTCUSDT", jan1, jan1)

	assert.Equal(t, models.StatusComplete, res.Status)
	assert.Zero(t, res.Pages)
	assert.Zero(t, ex.callCount("BTCUSDT"))
}
