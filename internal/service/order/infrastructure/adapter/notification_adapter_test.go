package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"orderpipe/internal/service/order/domain"
	"orderpipe/internal/service/order/port"
)

var (
	_ port.NotificationProducer = (*NotificationKafkaAdapter)(nil)
	_ port.NotificationProducer = (*NotificationLogAdapter)(nil)
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaAdapterPublishesEvent(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "notify")
	defer span.End()

	w := &fakeWriter{}
	a := newNotificationKafkaAdapter(w, "order-notifications")
	a.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	require.NoError(t, a.SendOrderProcessed(ctx, "run-1", domain.NewOrder(3, "Monitor")))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "3", string(msg.Key))

	var event domain.OrderProcessed
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "run-1", event.RunID)
	assert.Equal(t, int64(3), event.OrderID)
	assert.Equal(t, "Monitor", event.Product)
	assert.Equal(t, span.SpanContext().TraceID().String(), event.TraceID)
	assert.True(t, a.now().Equal(event.SentAt))

	carrier := kafkaHeaderCarrier{headers: &msg.Headers}
	assert.NotEmpty(t, carrier.Get("traceparent"))

	require.NoError(t, a.Close())
	assert.True(t, w.closed)
}

func TestKafkaAdapterWrapsWriteErrors(t *testing.T) {
	cause := errors.New("broker down")
	a := newNotificationKafkaAdapter(&fakeWriter{err: cause}, "order-notifications")

	err := a.SendOrderProcessed(context.Background(), "run-1", domain.NewOrder(1, "Mouse"))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "order 1")
}

func TestKafkaHeaderCarrierOverwrites(t *testing.T) {
	var headers []kafka.Header
	c := kafkaHeaderCarrier{headers: &headers}

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "3")

	assert.Equal(t, "3", c.Get("a"))
	assert.Equal(t, []string{"a", "b"}, c.Keys())
	assert.Empty(t, c.Get("missing"))
}

func TestLogAdapter(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).Level(zerolog.DebugLevel).WithContext(context.Background())
	a := NewNotificationLogAdapter()

	require.NoError(t, a.SendOrderProcessed(ctx, "run-9", domain.NewOrder(5, "Teclado")))
	assert.Contains(t, buf.String(), `"order_id":5`)
	assert.Contains(t, buf.String(), `"run_id":"run-9"`)
	assert.NoError(t, a.Close())
}
