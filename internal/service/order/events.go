// internal/service/order/events.go
package order

// Stage names, also the prefix of every console line a stage writes.
const (
	StageGenerator    = "Gerador"
	StageProcessor    = "Processador"
	StageNotification = "Notificador"
	StageMain         = "Main"
)

// Queue labels used for the depth gauge.
const (
	QueueOrders    = "orders"
	QueueProcessed = "processed"
)

// Values of the structured "event" log field.
const (
	EventOrderCreated        = "order_created"
	EventOrderProcessing     = "order_processing"
	EventOrderProcessed      = "order_processed"
	EventNotificationSent    = "notification_sent"
	EventStageStopped        = "stage_stopped"
	EventPipelineInterrupted = "pipeline_interrupted"
	EventPipelineCompleted   = "pipeline_completed"
)
