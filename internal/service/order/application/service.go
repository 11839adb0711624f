// internal/service/order/application/service.go
package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"orderpipe/internal/pkg/config"
	"orderpipe/internal/pkg/logger"
	"orderpipe/internal/pkg/metrics"
	"orderpipe/internal/pkg/queue"
	"orderpipe/internal/pkg/runner"
	"orderpipe/internal/service/order"
	"orderpipe/internal/service/order/domain"
	"orderpipe/internal/service/order/port"
)

// PipelineService wires the generator, processing and notification stages
// together and supervises one run at a time.
type PipelineService struct {
	cfg      config.Pipeline
	catalog  domain.Catalog
	notifier port.NotificationProducer

	logger   zerolog.Logger
	tracer   trace.Tracer
	metrics  *metrics.Metrics
	newRunID func() string
}

type Option func(*PipelineService)

func WithLogger(l zerolog.Logger) Option { return func(s *PipelineService) { s.logger = l } }

func WithTracer(t trace.Tracer) Option { return func(s *PipelineService) { s.tracer = t } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *PipelineService) { s.metrics = m } }

// WithRunID replaces the uuid run id generator.
func WithRunID(fn func() string) Option { return func(s *PipelineService) { s.newRunID = fn } }

func NewPipelineService(cfg config.Pipeline, notifier port.NotificationProducer, opts ...Option) (*PipelineService, error) {
	catalog, err := domain.NewCatalog(cfg.Catalog)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline")
	}
	if notifier == nil {
		return nil, errors.New("pipeline: notifier is required")
	}

	s := &PipelineService{
		cfg:      cfg,
		catalog:  catalog,
		notifier: notifier,
		logger:   zerolog.Nop(),
		tracer:   otel.Tracer("orderpipe/internal/service/order/application"),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	return s, nil
}

// Report describes a finished run.
type Report struct {
	RunID   string
	Elapsed time.Duration
	Stages  []domain.StageSnapshot
}

// Stage returns the snapshot of the named stage.
func (r *Report) Stage(name string) (domain.StageSnapshot, bool) {
	for _, st := range r.Stages {
		if st.Name == name {
			return st, true
		}
	}
	return domain.StageSnapshot{}, false
}

// Interrupted reports whether any stage stopped because ctx was cancelled.
func (r *Report) Interrupted() bool {
	for _, st := range r.Stages {
		if st.Interrupted {
			return true
		}
	}
	return false
}

func (r *Report) interruptedStages() []string {
	var names []string
	for _, st := range r.Stages {
		if st.Interrupted {
			names = append(names, st.Name)
		}
	}
	return names
}

type pipelineStage interface {
	runner.Task
	Status() domain.StageSnapshot
}

// Run executes one pipeline run and blocks until every stage has returned.
// It never cancels the stages itself; cancelling ctx interrupts them. The
// completion line is always the last thing logged.
func (s *PipelineService) Run(ctx context.Context) (*Report, error) {
	runID := s.newRunID()
	log := s.logger.With().Str(logger.FieldRunID, runID).Logger()
	ctx = logger.WithContext(ctx, log)

	ctx, span := s.tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("pipeline.order_count", s.cfg.OrderCount),
	))
	defer span.End()

	orders := queue.New[domain.Order]()
	processed := queue.New[domain.Order]()
	deps := order.Deps{
		RunID:   runID,
		Logger:  log,
		Tracer:  s.tracer,
		Metrics: s.metrics,
	}

	stages := []pipelineStage{
		order.NewGenerator(order.GeneratorConfig{
			Count:   s.cfg.OrderCount,
			Catalog: s.catalog,
			Delay:   s.cfg.GenerationDelay,
		}, &domain.Sequence{}, orders, deps),
		order.NewProcessor(order.ProcessorConfig{
			Delay:       s.cfg.ProcessingDelay,
			IdleTimeout: s.cfg.IdleTimeout,
		}, orders, processed, deps),
		order.NewNotifier(order.NotifierConfig{
			Delay:       s.cfg.NotificationDelay,
			IdleTimeout: s.cfg.IdleTimeout,
		}, processed, s.notifier, deps),
	}

	start := time.Now()
	r := runner.New(log)
	for _, st := range stages {
		r.Go(ctx, st)
	}
	err := r.Wait()

	report := &Report{RunID: runID, Elapsed: time.Since(start)}
	for _, st := range stages {
		report.Stages = append(report.Stages, st.Status())
	}
	span.SetAttributes(attribute.Bool("pipeline.interrupted", report.Interrupted()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stage failed")
		log.Error().Err(err).Msg("pipeline stage failed")
	}
	log.Debug().Dur("elapsed", report.Elapsed).Msg("pipeline finished")
	if report.Interrupted() {
		log.Warn().
			Str(logger.FieldStage, order.StageMain).
			Str(logger.FieldEvent, order.EventPipelineInterrupted).
			Msgf("[%s] Processamento interrompido: %s", order.StageMain, strings.Join(report.interruptedStages(), ", "))
	}

	log.Info().
		Str(logger.FieldStage, order.StageMain).
		Str(logger.FieldEvent, order.EventPipelineCompleted).
		Msgf("[%s] Processamento concluído.", order.StageMain)

	if err != nil {
		return report, errors.Wrap(err, "pipeline run")
	}
	return report, nil
}
