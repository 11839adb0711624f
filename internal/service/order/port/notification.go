package port

import (
	"context"

	"orderpipe/internal/service/order/domain"
)

// NotificationProducer is the outbound port for order notifications.
type NotificationProducer interface {
	// SendOrderProcessed dispatches the notification for an order that left
	// the processing stage.
	SendOrderProcessed(ctx context.Context, runID string, order domain.Order) error
}
