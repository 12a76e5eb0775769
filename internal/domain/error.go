package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrAlreadyExists     = errors.New("entity already exists")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrAlreadyPurchased  = errors.New("item already purchased")
	ErrAlreadySubscribed = errors.New("user already has an active subscription")
	ErrItemUnavailable   = errors.New("item is not available for purchase")
	ErrPhoneRequired     = errors.New("phone number is required for payment")
	ErrProofRequired     = errors.New("payment proof is required")
	ErrIntentNotPending  = errors.New("purchase intent is not pending")
	ErrPromoInvalid      = errors.New("promo code cannot be applied")
	ErrPromoExhausted    = errors.New("promo code usage limit reached")
	ErrRateLimited       = errors.New("too many requests")
	ErrLockBusy          = errors.New("another request for this purchase is in flight")

	// Gateway errors. Unavailable is transient (a status check must be treated
	// as inconclusive); Rejected means the provider explicitly refused.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayRejected    = errors.New("payment gateway rejected the request")

	// Persistence errors
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid database execution context")
)
