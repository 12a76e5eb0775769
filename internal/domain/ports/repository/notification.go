package repository

import (
	"context"

	"inet-marketplace/internal/domain/model"
)

type NotificationRepository interface {
	Save(ctx context.Context, tx Tx, n *model.Notification) error
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.Notification, error)
}
