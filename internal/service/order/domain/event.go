// internal/service/order/domain/event.go
package domain

import "time"

// OrderProcessed is published by the notification sinks once an order has
// left the processing stage.
type OrderProcessed struct {
	RunID   string    `json:"runId"`
	TraceID string    `json:"traceId,omitempty"`
	OrderID int64     `json:"orderId"`
	Product string    `json:"product"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sentAt"`
}
