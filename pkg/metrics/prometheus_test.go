package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FxPull/internal/domain/models"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordPage("BTCUSDT", models.PageRecords)
	r.RecordPage("BTCUSDT", models.PageRecords)
	r.RecordPage("BTCUSDT", models.PageError)
	r.RecordSeries("BTC", models.StatusPartialNetworkError, 1440)
	r.RecordError("sink_write")
	r.RecordLatency("klines", 0.12)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.pagesTotal.WithLabelValues("BTCUSDT", "records")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.pagesTotal.WithLabelValues("BTCUSDT", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.seriesTotal.WithLabelValues("BTC", "partial_network_error")))
	assert.Equal(t, 1440.0, testutil.ToFloat64(r.candlesGauge.WithLabelValues("BTC")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("sink_write")))

	n, err := testutil.GatherAndCount(reg, "fxpull_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
