package order

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"orderpipe/internal/pkg/logger"
	"orderpipe/internal/pkg/queue"
	"orderpipe/internal/service/order/domain"
)

// ProcessorConfig paces the processing stage.
type ProcessorConfig struct {
	// Delay simulates the work done per order.
	Delay time.Duration
	// IdleTimeout ends the stage when no order arrives in time.
	IdleTimeout time.Duration
}

// Processor moves orders from in to out, spending Delay on each.
type Processor struct {
	stage
	cfg ProcessorConfig
	in  *queue.Queue[domain.Order]
	out *queue.Queue[domain.Order]
}

func NewProcessor(cfg ProcessorConfig, in, out *queue.Queue[domain.Order], deps Deps) *Processor {
	return &Processor{
		stage: newStage(StageProcessor, deps),
		cfg:   cfg,
		in:    in,
		out:   out,
	}
}

// Run consumes until in is closed and drained, idles out or ctx ends. The
// output queue is closed on return so the next stage sees end of stream.
func (p *Processor) Run(ctx context.Context) error {
	if err := p.begin(); err != nil {
		return err
	}
	defer p.out.Close()

	p.stop(consume(ctx, p.in, p.cfg.IdleTimeout, p.process))
	return nil
}

func (p *Processor) process(ctx context.Context, o domain.Order) error {
	start := time.Now()
	ctx, span := p.deps.Tracer.Start(ctx, "processor.ProcessOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order.id", o.ID()),
		attribute.String("order.product", o.Product()),
		attribute.String("run.id", p.deps.RunID),
	)
	p.deps.Metrics.QueueDepth.WithLabelValues(QueueOrders).Set(float64(p.in.Len()))

	p.log.Info().
		Str(logger.FieldEvent, EventOrderProcessing).
		Int64(logger.FieldOrderID, o.ID()).
		Msgf("[%s] Processando pedido: %d", StageProcessor, o.ID())

	if err := pause(ctx, p.cfg.Delay); err != nil {
		// the order in flight is dropped
		span.RecordError(err)
		span.SetStatus(codes.Error, "processing interrupted")
		return err
	}

	if err := p.out.Put(o); err != nil {
		span.RecordError(err)
		p.log.Error().Err(err).Int64(logger.FieldOrderID, o.ID()).Msg("forward processed order")
		return errors.Wrapf(err, "forward order %d", o.ID())
	}
	p.deps.Metrics.OrdersProcessed.Inc()
	p.deps.Metrics.QueueDepth.WithLabelValues(QueueProcessed).Set(float64(p.out.Len()))
	p.deps.Metrics.ItemDuration.WithLabelValues(StageProcessor).Observe(time.Since(start).Seconds())
	p.status.handledOne()

	p.log.Info().
		Str(logger.FieldEvent, EventOrderProcessed).
		Int64(logger.FieldOrderID, o.ID()).
		Msgf("[%s] Pedido processado: %d", StageProcessor, o.ID())
	return nil
}
