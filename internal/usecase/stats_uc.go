package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/repository"
)

var _ StatsUseCase = (*statsUC)(nil)

// DashboardStats is the admin overview snapshot.
type DashboardStats struct {
	ActiveSubscriptions int                            `json:"active_subscriptions"`
	TotalRevenue        int64                          `json:"total_revenue"`
	Currency            string                         `json:"currency"`
	OrdersByFulfillment map[model.FulfillmentStatus]int `json:"orders_by_fulfillment"`
	GeneratedAt         time.Time                      `json:"generated_at"`
}

type StatsUseCase interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
}

type statsUC struct {
	intents repository.PurchaseIntentRepository
	log     *zerolog.Logger
}

func NewStatsUseCase(intents repository.PurchaseIntentRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{intents: intents, log: logger}
}

func (u *statsUC) Dashboard(ctx context.Context) (*DashboardStats, error) {
	now := time.Now()

	active, err := u.intents.CountActiveSubscriptions(ctx, repository.NoTX, now)
	if err != nil {
		return nil, err
	}
	revenue, err := u.intents.SumCompletedAmount(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	byFulfillment, err := u.intents.CountByFulfillment(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		ActiveSubscriptions: active,
		TotalRevenue:        revenue,
		Currency:            model.CurrencyTZS,
		OrdersByFulfillment: byFulfillment,
		GeneratedAt:         now,
	}, nil
}
