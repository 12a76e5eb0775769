package repository

import (
	"context"

	"inet-marketplace/internal/domain/model"
)

type PromoCodeRepository interface {
	Save(ctx context.Context, tx Tx, pc *model.PromoCode) error
	// FindByCode expects the canonical uppercase form.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.PromoCode, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.PromoCode, error)
	List(ctx context.Context, tx Tx) ([]*model.PromoCode, error)
	Delete(ctx context.Context, tx Tx, id string) error

	// IncrementUsage bumps used_count by one as an atomic counter operation
	// on the store. Called exactly once per completed redemption, inside
	// the same transaction as the completing status write.
	IncrementUsage(ctx context.Context, tx Tx, code string) error
}
