package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FxPull/internal/domain/models"
	"FxPull/internal/domain/repository"
)

func newTestBackfiller(ex *fakeExchange, workers int, sinks ...repository.RateSink) (*Backfiller, *fakeMetrics, *ReportStore) {
	m := newFakeMetrics()
	store := NewReportStore()
	b := NewBackfiller(
		NewSymbolResolver(ex, nil, time.Hour, m, nil),
		NewPaginator(ex, DefaultPaginatorConfig(), m, nil),
		sinks, store, workers, m, nil,
	)
	b.newID = func() string { return "run-1" }
	return b, m, store
}

func threeDayInput(currencies ...string) models.BackfillInput {
	return models.BackfillInput{Currencies: currencies, Start: jan1, End: jan1.Add(3 * day), Quote: "USDT"}
}

func TestBackfillRun(t *testing.T) {
	ex := newFakeExchange().
		listed("BTCUSDT", jan1.Add(-day), jan1.Add(30*day)).
		listed("EURUSDT", jan1.Add(-day), jan1.Add(30*day))
	ex.pairs = samplePairs
	sink := newMemorySink("memory")
	b, m, store := newTestBackfiller(ex, 1, sink)

	report, err := b.Run(context.Background(), threeDayInput("EUR", "USDT", "NGN", "BTC"))
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, []string{"BTC", "EUR", "USDT"}, report.Supported)
	assert.Equal(t, []string{"NGN"}, report.Unsupported)
	assert.Equal(t, 3, report.Succeeded)
	assert.Zero(t, report.Failed)
	require.Len(t, report.Results, 3)

	usdt := report.Results[2]
	assert.Equal(t, "USDTUSDT", usdt.Symbol)
	assert.True(t, usdt.Synthetic)
	assert.Equal(t, 72, usdt.Candles)
	assert.Zero(t, usdt.Pages)
	assert.Zero(t, ex.callCount("USDTUSDT"), "quote currency never hits the exchange")

	eur := sink.series["EUR"]
	require.NotNil(t, eur)
	assert.Equal(t, "EURUSDT", eur.Symbol)
	assert.Equal(t, models.StatusComplete, eur.Status)
	assert.Len(t, eur.Candles, 72)
	assert.Equal(t, 1, sink.flushed)

	assert.Equal(t, models.StatusComplete, m.series["BTC"])
	latest, ok := store.Latest()
	require.True(t, ok)
	assert.Same(t, report, latest)
}

func TestBackfillIsolatesFailures(t *testing.T) {
	ex := newFakeExchange().
		listed("BTCUSDT", jan1.Add(-day), jan1.Add(30*day)).
		listed("EURUSDT", jan1.Add(-day), jan1.Add(30*day))
	ex.pairs = append(samplePairs, models.TradingPair{Symbol: "DOGEUSDT", Status: "TRADING", BaseAsset: "DOGE", QuoteAsset: "USDT"})
	ex.failAt["BTCUSDT"] = 1 // network error before any candle
	// DOGE is listed in metadata but has no klines: empty first page

	sink := newMemorySink("memory")
	sink.failFor["EUR"] = true
	b, m, _ := newTestBackfiller(ex, 1, sink)

	report, err := b.Run(context.Background(), threeDayInput("BTC", "EUR", "DOGE", "USDT"))
	require.NoError(t, err)

	byCur := map[string]models.CurrencyResult{}
	for _, r := range report.Results {
		byCur[r.Currency] = r
	}

	assert.Equal(t, models.StatusPartialNetworkError, byCur["BTC"].Status)
	assert.False(t, byCur["BTC"].Succeeded)
	assert.Equal(t, models.StatusPartialNoData, byCur["DOGE"].Status)
	assert.False(t, byCur["DOGE"].Succeeded)
	assert.Equal(t, models.StatusComplete, byCur["EUR"].Status)
	assert.False(t, byCur["EUR"].Succeeded)
	assert.Contains(t, byCur["EUR"].Error, "memory")
	assert.True(t, byCur["USDT"].Succeeded)

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 3, report.Failed)
	assert.Equal(t, 2, m.errors["empty_series"])
	assert.Equal(t, 1, m.errors["sink_write"])
}

func TestBackfillParallelMatchesSequential(t *testing.T) {
	newEx := func() *fakeExchange {
		ex := newFakeExchange()
		pairs := []models.TradingPair{}
		for _, c := range []string{"AAA", "BBB", "CCC", "DDD", "EEE"} {
			ex.listed(c+"USDT", jan1.Add(-day), jan1.Add(200*day))
			pairs = append(pairs, models.TradingPair{Symbol: c + "USDT", Status: "TRADING", BaseAsset: c, QuoteAsset: "USDT"})
		}
		ex.pairs = pairs
		return ex
	}
	in := models.BackfillInput{
		Currencies: []string{"EEE", "AAA", "CCC", "BBB", "DDD", "USDT"},
		Start:      jan1, End: jan1.Add(70 * day), Quote: "USDT",
	}

	seqSink := newMemorySink("seq")
	seq, _, _ := newTestBackfiller(newEx(), 1, seqSink)
	seqReport, err := seq.Run(context.Background(), in)
	require.NoError(t, err)

	parSink := newMemorySink("par")
	par, _, _ := newTestBackfiller(newEx(), 4, parSink)
	parReport, err := par.Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, seqReport.Results, parReport.Results)
	for cur, s := range seqSink.series {
		assert.Equal(t, s.Candles, parSink.series[cur].Candles, cur)
	}
	assert.Equal(t, 6, parReport.Succeeded)
}

func TestBackfillRejectsInvalidInput(t *testing.T) {
	b, _, _ := newTestBackfiller(newFakeExchange(), 1)

	_, err := b.Run(context.Background(), models.BackfillInput{Start: jan1, End: jan1, Quote: "USDT"})
	assert.ErrorIs(t, err, models.ErrInvalidWindow)
}

// blockingSink records how many writes overlap.
type blockingSink struct {
	mu      sync.Mutex
	active  int
	maxSeen int
}

func (s *blockingSink) Name() string { return "blocking" }

func (s *blockingSink) WriteSeries(context.Context, *models.Series) error {
	s.mu.Lock()
	s.active++
	if s.active > s.maxSeen {
		s.maxSeen = s.active
	}
	s.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	s.mu.Lock()
	s.active--
	s.mu.Unlock()
	return nil
}

func (s *blockingSink) Flush(context.Context) error { return nil }

func TestBackfillBoundsWorkers(t *testing.T) {
	ex := newFakeExchange()
	var currencies []string
	for _, c := range []string{"AAA", "BBB", "CCC", "DDD", "EEE", "FFF"} {
		ex.listed(c+"USDT", jan1, jan1.Add(10*day))
		ex.pairs = append(ex.pairs, models.TradingPair{Symbol: c + "USDT", Status: "TRADING", BaseAsset: c, QuoteAsset: "USDT"})
		currencies = append(currencies, c)
	}
	sink := &blockingSink{}
	b, _, _ := newTestBackfiller(ex, 2, sink)

	report, err := b.Run(context.Background(), threeDayInput(currencies...))
	require.NoError(t, err)
	assert.Equal(t, 6, report.Succeeded)
	assert.LessOrEqual(t, sink.maxSeen, 2)
}
