package order

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"orderpipe/internal/pkg/logger"
	"orderpipe/internal/pkg/metrics"
	"orderpipe/internal/pkg/queue"
	"orderpipe/internal/service/order/domain"
)

const tracerName = "orderpipe/internal/service/order"

// ErrAlreadyRan is returned when a stage value is run a second time.
var ErrAlreadyRan = errors.New("stage already ran")

// Deps are the collaborators shared by every stage of one pipeline run.
type Deps struct {
	RunID   string
	Logger  zerolog.Logger
	Tracer  trace.Tracer
	Metrics *metrics.Metrics
}

func (d Deps) withDefaults() Deps {
	if d.Tracer == nil {
		d.Tracer = otel.Tracer(tracerName)
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	return d
}

// stage carries what every concrete stage has in common: a name, its
// execution record and its dependencies.
type stage struct {
	name   string
	deps   Deps
	log    zerolog.Logger
	status *stageStatus
}

func newStage(name string, deps Deps) stage {
	deps = deps.withDefaults()
	return stage{
		name:   name,
		deps:   deps,
		log:    deps.Logger.With().Str(logger.FieldStage, name).Logger(),
		status: newStageStatus(name),
	}
}

func (s *stage) Name() string { return s.name }

// Status returns the stage's current execution record.
func (s *stage) Status() domain.StageSnapshot { return s.status.snapshot() }

func (s *stage) begin() error {
	if !s.status.start() {
		return errors.Wrap(ErrAlreadyRan, s.name)
	}
	s.log.Debug().Msg("stage started")
	return nil
}

// stop records the terminal state. Interruption is logged at warn so that an
// operator sees it; every other reason is the normal end of a run.
func (s *stage) stop(reason domain.StopReason) {
	s.status.finish(reason)
	s.deps.Metrics.StageStops.WithLabelValues(s.name, string(reason)).Inc()

	ev := s.log.Debug()
	if reason == domain.StopInterrupted {
		ev = s.log.Warn()
	}
	ev.Str(logger.FieldEvent, EventStageStopped).
		Str(logger.FieldReason, string(reason)).
		Int("handled", s.status.snapshot().Handled).
		Msgf("[%s] stage stopped: %s", s.name, reason)
}

// pause suspends for d, returning early with ctx's error when interrupted.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// consume takes orders from in and hands each to handle until the queue is
// closed and drained, stays idle for idle, or ctx ends. handle returns an
// error only to abort the loop.
func consume(
	ctx context.Context,
	in *queue.Queue[domain.Order],
	idle time.Duration,
	handle func(ctx context.Context, o domain.Order) error,
) domain.StopReason {
	for {
		o, err := in.Take(ctx, idle)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			// an upstream stage closes its output on the same cancellation
			return domain.StopInterrupted
		case errors.Is(err, queue.ErrTimeout):
			return domain.StopIdleTimeout
		case errors.Is(err, queue.ErrClosed):
			return domain.StopClosed
		default:
			return domain.StopInterrupted
		}

		if err := handle(ctx, o); err != nil {
			if ctx.Err() != nil {
				return domain.StopInterrupted
			}
			return domain.StopClosed
		}
	}
}
