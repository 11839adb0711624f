// cmd/order-pipeline/main.go
package main

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"

	"orderpipe/internal/pkg/bootstrap"
	"orderpipe/internal/pkg/config"
	"orderpipe/internal/service/order/application"
	"orderpipe/internal/service/order/infrastructure/adapter"
	"orderpipe/internal/service/order/port"
)

const serviceName = "order-pipeline"

// notificationSink is a notification producer owning resources to release.
type notificationSink interface {
	port.NotificationProducer
	Close() error
}

// main is the composition root: it assembles the pipeline and runs it once.
func main() {
	os.Exit(bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Run:         runPipeline,
	}))
}

func runPipeline(ctx context.Context, app bootstrap.AppCtx) error {
	sink := newNotificationSink(app.Config)
	defer func() {
		if err := sink.Close(); err != nil {
			app.Logger.Warn().Err(err).Msg("failed to close notification sink")
		}
	}()

	svc, err := application.NewPipelineService(app.Config.Pipeline, sink,
		application.WithLogger(app.Logger),
		application.WithTracer(otel.Tracer(serviceName)),
		application.WithMetrics(app.Metrics),
	)
	if err != nil {
		return err
	}

	_, err = svc.Run(ctx)
	return err
}

func newNotificationSink(cfg *config.Config) notificationSink {
	if cfg.KafkaEnabled() {
		return adapter.NewNotificationKafkaAdapter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.Topic)
	}
	return adapter.NewNotificationLogAdapter()
}
