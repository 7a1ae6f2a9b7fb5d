package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"FxPull/internal/domain/models"
)

var (
	jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day  = 24 * time.Hour

	errUpstream = errors.New("upstream 502")
)

// fakeExchange serves hourly candles for [from, to) per symbol, capped by limit.
type fakeExchange struct {
	mu      sync.Mutex
	data    map[string][2]time.Time
	failAt  map[string]int // 1-based call that returns an error
	calls   map[string]int
	windows map[string][]models.Window
	pairs   []models.TradingPair
	pairErr error
	// shift makes pages after the first start one candle early
	overlap bool
}

func newFakeExchange() *fakeExchange {
	return &fakeExchange{
		data:    map[string][2]time.Time{},
		failAt:  map[string]int{},
		calls:   map[string]int{},
		windows: map[string][]models.Window{},
	}
}

func (f *fakeExchange) listed(symbol string, from, to time.Time) *fakeExchange {
	f.data[symbol] = [2]time.Time{from, to}
	return f
}

func (f *fakeExchange) FetchPage(_ context.Context, symbol string, w models.Window, limit int) models.PageResult {
	f.mu.Lock()
	f.calls[symbol]++
	call := f.calls[symbol]
	f.windows[symbol] = append(f.windows[symbol], w)
	f.mu.Unlock()

	if n, ok := f.failAt[symbol]; ok && n == call {
		return models.ErrorPage(errUpstream)
	}

	span, ok := f.data[symbol]
	if !ok {
		return models.EmptyPage()
	}
	first := w.Start
	if f.overlap && call > 1 {
		first = first.Add(-time.Hour)
	}

	var out []models.Candle
	t := span[0]
	for t.Before(first) {
		t = t.Add(time.Hour)
	}
	for ; t.Before(w.End) && t.Before(span[1]) && len(out) < limit; t = t.Add(time.Hour) {
		out = append(out, candleAt(t, "2.5"))
	}
	if len(out) == 0 {
		return models.EmptyPage()
	}
	return models.RecordsPage(out)
}

func (f *fakeExchange) TradingPairs(context.Context) ([]models.TradingPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["exchangeInfo"]++
	return f.pairs, f.pairErr
}

func (f *fakeExchange) callCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

func candleAt(t time.Time, price string) models.Candle {
	p := decimal.RequireFromString(price)
	return models.Candle{
		OpenTime: t, CloseTime: models.CloseTimeFor(t),
		Open: p, High: p, Low: p, Close: p,
		Volume: "10",
	}
}

type pageObs struct {
	symbol string
	status models.PageStatus
}

type fakeMetrics struct {
	mu     sync.Mutex
	pages  []pageObs
	series map[string]models.CompletionStatus
	errors map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{series: map[string]models.CompletionStatus{}, errors: map[string]int{}}
}

func (m *fakeMetrics) RecordPage(symbol string, status models.PageStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = append(m.pages, pageObs{symbol, status})
}

func (m *fakeMetrics) RecordSeries(currency string, status models.CompletionStatus, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[currency] = status
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

// memorySink keeps written series by currency.
type memorySink struct {
	mu      sync.Mutex
	name    string
	series  map[string]*models.Series
	failFor map[string]bool
	flushed int
}

func newMemorySink(name string) *memorySink {
	return &memorySink{name: name, series: map[string]*models.Series{}, failFor: map[string]bool{}}
}

func (s *memorySink) Name() string { return s.name }

func (s *memorySink) WriteSeries(_ context.Context, series *models.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[series.Base] {
		return errors.New("disk full")
	}
	s.series[series.Base] = series
	return nil
}

func (s *memorySink) Flush(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushed++
	return nil
}
