package adapter

import (
	"context"

	"inet-marketplace/internal/domain/model"
)

// NotificationSink receives lifecycle notifications. Implementations are
// best-effort side channels: the caller dispatches fire-and-forget and a
// sink error must never fail the purchase flow.
type NotificationSink interface {
	Notify(ctx context.Context, n *model.Notification) error
}
