package adapter

import (
	"context"

	"orderpipe/internal/pkg/logger"
	"orderpipe/internal/service/order/domain"
)

// NotificationLogAdapter is the default notification sink: it records the
// dispatch in the context logger and always succeeds.
type NotificationLogAdapter struct{}

func NewNotificationLogAdapter() *NotificationLogAdapter {
	return &NotificationLogAdapter{}
}

func (a *NotificationLogAdapter) SendOrderProcessed(ctx context.Context, runID string, order domain.Order) error {
	logger.Ctx(ctx).Debug().
		Str(logger.FieldRunID, runID).
		Int64(logger.FieldOrderID, order.ID()).
		Str(logger.FieldProduct, order.Product()).
		Msg("notification dispatched")
	return nil
}

func (a *NotificationLogAdapter) Close() error { return nil }
