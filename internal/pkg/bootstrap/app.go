// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"orderpipe/internal/pkg/config"
	"orderpipe/internal/pkg/logger"
	"orderpipe/internal/pkg/metrics"
	"orderpipe/internal/tracing"
)

const shutdownTimeout = 10 * time.Second

// AppCtx is what a service receives once the ambient stack is up.
type AppCtx struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// AppInfo describes the service to start.
type AppInfo struct {
	ServiceName string
	// Run does the service's work and returns when it is done. ctx is
	// cancelled on SIGINT/SIGTERM.
	Run func(ctx context.Context, app AppCtx) error
}

// StartService loads the embedded configuration, runs the service with
// signal-driven cancellation and returns the process exit code.
func StartService(info AppInfo) int {
	cfg, err := config.Default()
	if err != nil {
		zlog.Error().Err(err).Msg("invalid embedded configuration")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Start(ctx, info, cfg, os.Stdout)
}

// Start brings up logging, tracing and metrics for cfg, runs info.Run and
// shuts the tracer down afterwards.
func Start(ctx context.Context, info AppInfo, cfg *config.Config, out io.Writer) int {
	l := logger.New(cfg.Log, out).With().Str(logger.FieldService, info.ServiceName).Logger()
	zlog.Logger = l

	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		l.Error().Err(err).Msg("failed to initialize tracer provider")
		return 1
	}

	m := metrics.New()
	runErr := info.Run(logger.WithContext(ctx, l), AppCtx{
		Config:  cfg,
		Logger:  l,
		Metrics: m,
	})
	publishMetrics(l, cfg, info.ServiceName, m)

	// Flush buffered spans before exiting.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := tp.Shutdown(shutdownCtx); err != nil {
		l.Warn().Err(err).Msg("error shutting down tracer provider")
	}

	if runErr != nil {
		l.Error().Err(runErr).Msgf("%s failed", info.ServiceName)
		return 1
	}
	l.Debug().Msgf("%s shut down", info.ServiceName)
	return 0
}

// publishMetrics logs the gathered registry at debug and, when a Pushgateway
// is configured, pushes it. Neither failure changes the exit code.
func publishMetrics(l zerolog.Logger, cfg *config.Config, job string, m *metrics.Metrics) {
	snap, err := m.Snapshot()
	if err != nil {
		l.Warn().Err(err).Msg("failed to gather metrics")
		return
	}
	ev := l.Debug()
	for name, v := range snap {
		ev = ev.Float64(name, v)
	}
	ev.Msg("metrics summary")

	if !cfg.PushgatewayEnabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := m.Push(ctx, cfg.Infra.Pushgateway.Endpoint, job); err != nil {
		l.Warn().Err(err).Msg("failed to push metrics")
	}
}
