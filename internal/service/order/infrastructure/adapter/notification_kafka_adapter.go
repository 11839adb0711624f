package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"orderpipe/internal/service/order/domain"
	"orderpipe/internal/tracing"
)

// messageWriter is the subset of *kafka.Writer the adapter needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NotificationKafkaAdapter implements port.NotificationProducer by publishing
// an OrderProcessed event per order.
type NotificationKafkaAdapter struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

// NewNotificationKafkaAdapter creates a producer for topic on brokers.
func NewNotificationKafkaAdapter(brokers []string, topic string) *NotificationKafkaAdapter {
	return newNotificationKafkaAdapter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}, topic)
}

func newNotificationKafkaAdapter(w messageWriter, topic string) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{writer: w, topic: topic, now: time.Now}
}

// SendOrderProcessed publishes the event keyed by order id, so that every
// notification of an order lands on the same partition.
func (a *NotificationKafkaAdapter) SendOrderProcessed(ctx context.Context, runID string, order domain.Order) error {
	event := domain.OrderProcessed{
		RunID:   runID,
		TraceID: tracing.GetTraceIDFromContext(ctx),
		OrderID: order.ID(),
		Product: order.Product(),
		Message: fmt.Sprintf("Seu pedido %d (%s) foi processado.", order.ID(), order.Product()),
		SentAt:  a.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal notification event")
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(order.ID(), 10)),
		Value: payload,
	}
	carrier := kafkaHeaderCarrier{headers: &msg.Headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	if err := a.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "publish notification for order %d to %s", order.ID(), a.topic)
	}
	return nil
}

// Close flushes and closes the underlying Kafka writer.
func (a *NotificationKafkaAdapter) Close() error {
	return a.writer.Close()
}

// kafkaHeaderCarrier lets the otel propagator write trace context into
// Kafka message headers.
type kafkaHeaderCarrier struct {
	headers *[]kafka.Header
}

func (c kafkaHeaderCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c kafkaHeaderCarrier) Set(key, value string) {
	for i, h := range *c.headers {
		if h.Key == key {
			(*c.headers)[i].Value = []byte(value)
			return
		}
	}
	*c.headers = append(*c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c kafkaHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}
