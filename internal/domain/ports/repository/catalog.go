package repository

import (
	"context"

	"inet-marketplace/internal/domain/model"
)

type ChannelPlanRepository interface {
	Save(ctx context.Context, tx Tx, p *model.ChannelPlan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ChannelPlan, error)
	// ListActive returns active plans ordered by sort order, then price.
	ListActive(ctx context.Context, tx Tx) ([]*model.ChannelPlan, error)
	List(ctx context.Context, tx Tx) ([]*model.ChannelPlan, error)
	Delete(ctx context.Context, tx Tx, id string) error
}

type ServiceRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Service) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Service, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.Service, error)
}

type VideoRepository interface {
	Save(ctx context.Context, tx Tx, v *model.Video) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Video, error)
	ListActive(ctx context.Context, tx Tx, category string) ([]*model.Video, error)
	// IncrementViews is an atomic counter bump, not read-then-write.
	IncrementViews(ctx context.Context, tx Tx, id string) error
}
