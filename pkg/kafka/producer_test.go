package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishBatchEncodesValues(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "gzip")
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	err := p.PublishBatch(context.Background(), "rates", []Message{
		{Key: []byte("BTCUSDT"), Value: map[string]any{"close": 42000.5}, Headers: map[string]string{"run_id": "r1"}},
		{Key: []byte("EURUSDT"), Value: "raw"},
		{Key: []byte("ETHUSDT"), Value: []byte(`{"a":1}`)},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 3)

	first := w.msgs[0]
	assert.Equal(t, "rates", first.Topic)
	assert.Equal(t, "BTCUSDT", string(first.Key))
	assert.Equal(t, fixed, first.Time)
	var v map[string]float64
	require.NoError(t, json.Unmarshal(first.Value, &v))
	assert.Equal(t, 42000.5, v["close"])
	require.Len(t, first.Headers, 1)
	assert.Equal(t, "run_id", first.Headers[0].Key)

	assert.Equal(t, "raw", string(w.msgs[1].Value))
	assert.Equal(t, `{"a":1}`, string(w.msgs[2].Value))
}

func TestPublishBatchWrapsWriterError(t *testing.T) {
	boom := errors.New("leader not available")
	p := newProducer(&recordingWriter{err: boom}, "gzip")

	err := p.Publish(context.Background(), "rates", []byte("k"), "v")
	assert.ErrorIs(t, err, boom)
}

func TestPublishBatchEmptyAndClose(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "gzip")

	require.NoError(t, p.PublishBatch(context.Background(), "rates", nil))
	assert.Empty(t, w.msgs)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Gzip, parseCompression("unknown"))
}
