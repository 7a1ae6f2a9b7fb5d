package repository

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FxPull/internal/domain/models"
)

func TestFileSinkWritesJSONL(t *testing.T) {
	sink := NewFileSink(t.TempDir(), "rates.csv", nil)
	series := hourlySeries("EUR", "EURUSDT", 3, "1.0921")

	require.NoError(t, sink.WriteSeries(context.Background(), series))

	f, err := os.Open(sink.SeriesPath("EUR"))
	require.NoError(t, err)
	defer f.Close()

	var rows []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var row map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &row))
		rows = append(rows, row)
	}
	require.Len(t, rows, 3)
	assert.Equal(t, float64(jan1.UnixMilli()), rows[0]["open_time"])
	assert.Equal(t, 1.0921, rows[0]["close"])
	assert.Equal(t, "3.5", rows[0]["volume"])
	assert.Equal(t, "EURUSDT", rows[0]["symbol"])
	assert.Equal(t, "EUR", rows[0]["base_currency"])
	assert.Equal(t, "USDT", rows[0]["quote_currency"])
}

func TestFileSinkCombinesOnFlush(t *testing.T) {
	sink := NewFileSink(t.TempDir(), "rates.csv", nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, s := range []*models.Series{
		hourlySeries("EUR", "EURUSDT", 2, "1.09"),
		hourlySeries("BTC", "BTCUSDT", 3, "42000.5"),
		hourlySeries("USDT", "USDTUSDT", 1, "1"),
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, sink.WriteSeries(ctx, s))
		}()
	}
	wg.Wait()
	require.NoError(t, sink.Flush(ctx))

	f, err := os.Open(sink.CombinedPath())
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 1+2+3+1)
	assert.Equal(t, models.RateColumns, records[0])

	first := records[1]
	assert.Equal(t, "2024-01-01 00:00:00.000", first[0])
	assert.Equal(t, "42000.5", first[4])
	assert.Equal(t, "2024-01-01 00:59:59.999", first[6])
	assert.Equal(t, "11", first[8])
	assert.Equal(t, "BTC", first[13])

	// ordered by currency: BTC, EUR, USDT
	assert.Equal(t, "EUR", records[4][13])
	assert.Equal(t, "USDT", records[6][13])
	assert.Equal(t, "1", records[6][1])
}

func TestFileSinkFlushWithoutSeries(t *testing.T) {
	sink := NewFileSink(t.TempDir(), "rates.csv", nil)

	require.NoError(t, sink.Flush(context.Background()))
	_, err := os.Stat(sink.CombinedPath())
	assert.True(t, os.IsNotExist(err))
}

func TestFileSinkRewritesSeries(t *testing.T) {
	sink := NewFileSink(t.TempDir(), "rates.csv", nil)
	ctx := context.Background()

	require.NoError(t, sink.WriteSeries(ctx, hourlySeries("EUR", "EURUSDT", 5, "1")))
	require.NoError(t, sink.WriteSeries(ctx, hourlySeries("EUR", "EURUSDT", 2, "1")))

	b, err := os.ReadFile(sink.SeriesPath("EUR"))
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(b))
}

func countLines(b []byte) int {
	n := 0
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}
