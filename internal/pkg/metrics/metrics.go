// Package metrics holds the Prometheus collectors for the order pipeline.
package metrics

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all pipeline collectors, registered on their own registry so
// that several pipelines (and tests) can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	OrdersCreated     prometheus.Counter
	OrdersProcessed   prometheus.Counter
	NotificationsSent prometheus.Counter
	NotifyFailures    prometheus.Counter

	// Stage stop reasons, labelled by stage and reason.
	StageStops *prometheus.CounterVec

	QueueDepth   *prometheus.GaugeVec
	ItemDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "orderpipe_orders_created_total",
			Help: "Orders produced by the generator stage",
		}),
		OrdersProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "orderpipe_orders_processed_total",
			Help: "Orders forwarded by the processing stage",
		}),
		NotificationsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "orderpipe_notifications_sent_total",
			Help: "Notifications dispatched by the notification stage",
		}),
		NotifyFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "orderpipe_notification_failures_total",
			Help: "Notification dispatches that returned an error",
		}),
		StageStops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderpipe_stage_stops_total",
				Help: "Stage terminations by reason",
			},
			[]string{"stage", "reason"},
		),
		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "orderpipe_queue_depth",
				Help: "Orders waiting in a stage queue",
			},
			[]string{"queue"},
		),
		ItemDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "orderpipe_item_duration_seconds",
				Help:    "Time a stage spent on one order",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"stage"},
		),
	}
}

// Snapshot gathers the registry and folds every family into one value:
// counters and gauges are summed over their label sets, histograms report
// their sample count.
func (m *Metrics) Snapshot() (map[string]float64, error) {
	families, err := m.Registry.Gather()
	if err != nil {
		return nil, errors.Wrap(err, "metrics: gather")
	}

	out := make(map[string]float64, len(families))
	for _, mf := range families {
		var total float64
		for _, metric := range mf.GetMetric() {
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				total += metric.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				total += metric.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				total += float64(metric.GetHistogram().GetSampleCount())
			}
		}
		out[mf.GetName()] = total
	}
	return out, nil
}

// Push sends the registry to the Pushgateway at url under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	err := push.New(url, job).Gatherer(m.Registry).PushContext(ctx)
	return errors.Wrap(err, "metrics: push")
}
