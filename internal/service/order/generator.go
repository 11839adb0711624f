package order

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"orderpipe/internal/pkg/logger"
	"orderpipe/internal/pkg/queue"
	"orderpipe/internal/service/order/domain"
)

// GeneratorConfig sizes and paces order production.
type GeneratorConfig struct {
	Count   int
	Catalog domain.Catalog
	Delay   time.Duration
}

// Generator produces Count orders into its output queue and closes the queue
// after the last one.
type Generator struct {
	stage
	cfg GeneratorConfig
	seq *domain.Sequence
	out *queue.Queue[domain.Order]
}

// NewGenerator creates a generator drawing ids from seq.
func NewGenerator(cfg GeneratorConfig, seq *domain.Sequence, out *queue.Queue[domain.Order], deps Deps) *Generator {
	return &Generator{
		stage: newStage(StageGenerator, deps),
		cfg:   cfg,
		seq:   seq,
		out:   out,
	}
}

// Run produces the orders. Interruption stops production early and is
// recorded on the status, not returned.
func (g *Generator) Run(ctx context.Context) error {
	if err := g.begin(); err != nil {
		return err
	}
	defer g.out.Close()

	for i := 0; i < g.cfg.Count; i++ {
		if i > 0 {
			if err := pause(ctx, g.cfg.Delay); err != nil {
				g.stop(domain.StopInterrupted)
				return nil
			}
		}

		if err := g.produce(ctx, i); err != nil {
			g.stop(domain.StopClosed)
			return err
		}
	}

	g.stop(domain.StopExhausted)
	return nil
}

func (g *Generator) produce(ctx context.Context, i int) error {
	_, span := g.deps.Tracer.Start(ctx, "generator.CreateOrder")
	defer span.End()

	o := domain.NewOrder(g.seq.Next(), g.cfg.Catalog.Pick(i))
	span.SetAttributes(
		attribute.Int64("order.id", o.ID()),
		attribute.String("order.product", o.Product()),
		attribute.String("run.id", g.deps.RunID),
	)

	if err := g.out.Put(o); err != nil {
		span.RecordError(err)
		return errors.Wrapf(err, "put order %d", o.ID())
	}
	g.deps.Metrics.OrdersCreated.Inc()
	g.deps.Metrics.QueueDepth.WithLabelValues(QueueOrders).Set(float64(g.out.Len()))
	g.status.handledOne()

	g.log.Info().
		Str(logger.FieldEvent, EventOrderCreated).
		Int64(logger.FieldOrderID, o.ID()).
		Str(logger.FieldProduct, o.Product()).
		Msgf("[%s] Pedido criado: %d - %s", StageGenerator, o.ID(), o.Product())
	return nil
}
