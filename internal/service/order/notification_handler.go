package order

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"orderpipe/internal/pkg/logger"
	"orderpipe/internal/pkg/queue"
	"orderpipe/internal/service/order/domain"
	"orderpipe/internal/service/order/port"
)

// NotifierConfig paces the notification stage.
type NotifierConfig struct {
	Delay       time.Duration
	IdleTimeout time.Duration
}

// Notifier is the last stage: it dispatches one notification per order and
// has no output queue.
type Notifier struct {
	stage
	cfg      NotifierConfig
	in       *queue.Queue[domain.Order]
	producer port.NotificationProducer
}

func NewNotifier(cfg NotifierConfig, in *queue.Queue[domain.Order], producer port.NotificationProducer, deps Deps) *Notifier {
	return &Notifier{
		stage:    newStage(StageNotification, deps),
		cfg:      cfg,
		in:       in,
		producer: producer,
	}
}

func (n *Notifier) Run(ctx context.Context) error {
	if err := n.begin(); err != nil {
		return err
	}

	n.stop(consume(ctx, n.in, n.cfg.IdleTimeout, n.notify))
	return nil
}

func (n *Notifier) notify(ctx context.Context, o domain.Order) error {
	start := time.Now()
	ctx, span := n.deps.Tracer.Start(ctx, "notifier.SendNotification")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order.id", o.ID()),
		attribute.String("run.id", n.deps.RunID),
	)
	n.deps.Metrics.QueueDepth.WithLabelValues(QueueProcessed).Set(float64(n.in.Len()))

	n.log.Info().
		Str(logger.FieldEvent, EventNotificationSent).
		Int64(logger.FieldOrderID, o.ID()).
		Msgf("[%s] Enviando notificação para pedido: %d", StageNotification, o.ID())

	// A failed dispatch is not fatal: the order has already been processed.
	if err := n.producer.SendOrderProcessed(ctx, n.deps.RunID, o); err != nil {
		if ctx.Err() != nil {
			span.RecordError(err)
			return ctx.Err()
		}
		n.status.handledOne()
		n.deps.Metrics.NotifyFailures.Inc()
		span.RecordError(err)
		n.log.Warn().Err(err).Int64(logger.FieldOrderID, o.ID()).Msg("notification dispatch failed")
	} else {
		n.status.handledOne()
		n.deps.Metrics.NotificationsSent.Inc()
		span.AddEvent("notification dispatched")
	}

	if err := pause(ctx, n.cfg.Delay); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "notification interrupted")
		return err
	}
	n.deps.Metrics.ItemDuration.WithLabelValues(StageNotification).Observe(time.Since(start).Seconds())
	return nil
}
