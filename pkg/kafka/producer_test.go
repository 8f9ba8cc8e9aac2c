package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/vanisarees/storefront/pkg/logger"
)

// --- Fake Writer ---

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func newTestProducer(w *fakeWriter) *Producer {
	return &Producer{writer: w, logger: logger.Discard()}
}

func header(msg kafka.Message, key string) string {
	return headerCarrier{headers: &msg.Headers}.Get(key)
}

// --- Event ---

func TestTopic(t *testing.T) {
	assert.Equal(t, "storefront.cart.updated", Topic("cart", "updated"))
}

func TestNewEvent(t *testing.T) {
	type payload struct {
		SessionID string `json:"session_id"`
		Count     int    `json:"item_count"`
	}

	ev, err := NewEvent("cart.updated", "s1", "storefront", payload{SessionID: "s1", Count: 2})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "cart.updated", ev.Type)
	assert.Equal(t, "s1", ev.Key)
	assert.Equal(t, 1, ev.Version)
	assert.WithinDuration(t, time.Now().UTC(), ev.Timestamp, 2*time.Second)
	assert.JSONEq(t, `{"session_id":"s1","item_count":2}`, string(ev.Data))

	var got payload
	require.NoError(t, ev.Decode(&got))
	assert.Equal(t, 2, got.Count)
}

func TestNewEvent_Unserializable(t *testing.T) {
	_, err := NewEvent("cart.updated", "s1", "storefront", make(chan int))
	assert.Error(t, err)
}

// --- Producer ---

func TestPublish_WritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	ev, err := NewEvent("wishlist.updated", "s7", "storefront", map[string]int{"item_count": 1})
	require.NoError(t, err)
	ev.WithCorrelationID("corr-1")

	topic := Topic("wishlist", "updated")
	before := testutil.ToFloat64(messagesPublished.WithLabelValues(topic))

	require.NoError(t, p.Publish(context.Background(), topic, ev))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, topic, msg.Topic)
	assert.Equal(t, "s7", string(msg.Key))
	assert.Equal(t, "wishlist.updated", header(msg, "event_type"))
	assert.Equal(t, "corr-1", header(msg, "correlation_id"))
	assert.Equal(t, before+1, testutil.ToFloat64(messagesPublished.WithLabelValues(topic)))
}

func TestPublish_WriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := newTestProducer(w)

	ev, err := NewEvent("cart.updated", "s1", "storefront", nil)
	require.NoError(t, err)

	topic := Topic("cart", "updated")
	before := testutil.ToFloat64(publishErrors.WithLabelValues(topic))

	err = p.Publish(context.Background(), topic, ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
	assert.Equal(t, before+1, testutil.ToFloat64(publishErrors.WithLabelValues(topic)))
}

func TestMessage_InjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	ev, err := NewEvent("cart.updated", "s1", "storefront", nil)
	require.NoError(t, err)

	msg, err := Message(ctx, Topic("cart", "updated"), ev)
	require.NoError(t, err)
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", header(msg, "traceparent"))
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newTestProducer(w).Close())
	assert.True(t, w.closed)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	assert.Error(t, PingBrokers(context.Background(), nil))
}

// --- Header Carrier ---

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: "a", Value: []byte("1")}}
	c := headerCarrier{headers: &headers}

	assert.Equal(t, "1", c.Get("a"))
	assert.Empty(t, c.Get("missing"))

	c.Set("a", "2")
	c.Set("b", "3")
	assert.Equal(t, "2", c.Get("a"))
	assert.ElementsMatch(t, []string{"a", "b"}, c.Keys())
	assert.Len(t, headers, 2)
}
