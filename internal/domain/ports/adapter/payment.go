package adapter

import "context"

// Transaction is the provider-side handle for a USSD push charge.
type Transaction struct {
	TranID  string // provider transaction id, used for status polling
	Network string // mobile network the push was routed to
}

// PaymentGateway is the hex port for the USSD push-payment provider.
type PaymentGateway interface {
	Name() string

	// CreateTransaction initiates a USSD push charge to the given phone.
	// NOT idempotent: calling twice double-charges the customer, so callers
	// must guarantee at most one call per purchase intent. Returns
	// domain.ErrGatewayUnavailable on transport failure and
	// domain.ErrGatewayRejected when the provider refuses the request.
	CreateTransaction(ctx context.Context, phone string, amount int64, payerName string) (Transaction, error)

	// CheckStatus returns the provider's raw payment_status string.
	// Returns domain.ErrGatewayUnavailable on transport failure; callers
	// must treat that as inconclusive, never as payment failure.
	CheckStatus(ctx context.Context, tranID string) (string, error)
}
