package model

import "strings"

type PaymentStatus string

const (
	PaymentStatusPending              PaymentStatus = "pending"               // created, awaiting provider confirmation
	PaymentStatusAwaitingVerification PaymentStatus = "awaiting_verification" // manual proof submitted, awaiting admin
	PaymentStatusCompleted            PaymentStatus = "completed"             // terminal, entitlement granted
	PaymentStatusFailed               PaymentStatus = "failed"                // terminal, no entitlement
)

// IsTerminal reports whether the payment can no longer change.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

type PaymentMethod string

const (
	PaymentMethodUSSD   PaymentMethod = "ussd"   // mobile-money push, confirmed by polling FastLipa
	PaymentMethodManual PaymentMethod = "manual" // proof-of-payment text, confirmed by an admin
	PaymentMethodPromo  PaymentMethod = "promo"  // free access promo, no money moves
)

// NormalizePaymentStatus maps FastLipa's free-text payment_status vocabulary
// to our fixed set. Unknown values degrade to pending rather than failing:
// the provider is known to introduce new pending-like substates.
func NormalizePaymentStatus(raw string) PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "COMPLETE", "COMPLETED", "SUCCESS", "SUCCESSFUL":
		return PaymentStatusCompleted
	case "FAILED", "FAIL", "CANCELLED", "CANCELED", "REJECTED", "DECLINED":
		return PaymentStatusFailed
	default:
		return PaymentStatusPending
	}
}
