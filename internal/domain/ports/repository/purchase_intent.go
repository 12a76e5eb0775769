package repository

import (
	"context"
	"time"

	"inet-marketplace/internal/domain/model"
)

// FulfillmentUpdate carries an admin's partial edit of a service order.
// Nil pointers mean "no change".
type FulfillmentUpdate struct {
	Status      *model.FulfillmentStatus
	AdminNote   *string
	Credentials *model.Credentials
}

// PurchaseIntentRepository persists the entitlement ledger. Terminal
// transitions go through the conditional Complete*/FailIfPending methods:
// they update only when the current status still permits the transition
// and report whether a row was won, which is the sole concurrency guard
// against double entitlement grants.
type PurchaseIntentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.PurchaseIntent) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PurchaseIntent, error)
	// FindByIDAndUser returns ErrNotFound on ownership mismatch so other
	// users' records never leak existence.
	FindByIDAndUser(ctx context.Context, tx Tx, id, userID string) (*model.PurchaseIntent, error)
	ListByUser(ctx context.Context, tx Tx, userID string, kind model.ItemKind) ([]*model.PurchaseIntent, error)

	// FindCompletedUnlock returns the completed intent for an unlock-style
	// (user, item) pair, or ErrNotFound.
	FindCompletedUnlock(ctx context.Context, tx Tx, userID string, kind model.ItemKind, itemID string) (*model.PurchaseIntent, error)
	// FindActiveSubscription returns the user's completed, active plan
	// intent whose window covers at, preferring the latest end date.
	FindActiveSubscription(ctx context.Context, tx Tx, userID string, at time.Time) (*model.PurchaseIntent, error)
	// CountCompletedByUserAndPromo counts a user's completed redemptions of
	// a promo code (per-user cap input).
	CountCompletedByUserAndPromo(ctx context.Context, tx Tx, userID, code string) (int, error)

	// CompleteIfPending atomically sets payment_status=completed together
	// with the entitlement fields, only if the record is still pending.
	CompleteIfPending(ctx context.Context, tx Tx, id string, start, end *time.Time, isActive bool) (bool, error)
	// FailIfPending atomically sets payment_status=failed, optionally
	// cancelling fulfillment, only if the record is still pending.
	FailIfPending(ctx context.Context, tx Tx, id string, cancelFulfillment bool, adminNote string) (bool, error)
	// CompleteIfAwaitingVerification moves a manual-proof intent to
	// completed, only if it still awaits verification.
	CompleteIfAwaitingVerification(ctx context.Context, tx Tx, id string) (bool, error)

	UpdateFulfillment(ctx context.Context, tx Tx, id string, upd FulfillmentUpdate) error

	// ListPendingOlderThan feeds the reconcile worker with stale USSD
	// intents, oldest first.
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.PurchaseIntent, error)

	// Stats
	CountActiveSubscriptions(ctx context.Context, tx Tx, at time.Time) (int, error)
	CountByFulfillment(ctx context.Context, tx Tx) (map[model.FulfillmentStatus]int, error)
	SumCompletedAmount(ctx context.Context, tx Tx) (int64, error)
}
