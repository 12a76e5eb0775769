package model

import (
	"strings"
	"time"

	"inet-marketplace/internal/domain"
)

type PromoType string

const (
	PromoTypeDiscount   PromoType = "discount"    // percentage off
	PromoTypeFixed      PromoType = "fixed"       // fixed amount off
	PromoTypeFreeAccess PromoType = "free_access" // free days, price drops to zero
)

// PromoCode is a redeemable code with a validity window and usage caps.
// UsedCount is incremented exactly once per completed redemption; the
// increment is an atomic counter operation on the store, never a
// read-modify-write in application code.
type PromoCode struct {
	ID          string
	Code        string // canonical uppercase, unique
	Description string
	Type        PromoType

	DiscountPercent int   // discount: 0..100
	FixedAmount     int64 // fixed: TZS to subtract
	FreeAccessDays  int   // free_access: days granted

	MaxUses        int // 0 = unlimited
	UsedCount      int
	MaxUsesPerUser int

	ValidFrom  *time.Time // nil = unbounded
	ValidUntil *time.Time // nil = unbounded
	IsActive   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizePromoCode canonicalizes user input the way codes are stored.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewPromoCode validates and constructs an active promo code.
func NewPromoCode(id, code string, typ PromoType) (*PromoCode, error) {
	code = NormalizePromoCode(code)
	if id == "" || code == "" {
		return nil, domain.ErrInvalidArgument
	}
	switch typ {
	case PromoTypeDiscount, PromoTypeFixed, PromoTypeFreeAccess:
	default:
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &PromoCode{
		ID:             id,
		Code:           code,
		Type:           typ,
		MaxUsesPerUser: 1,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// WithinWindow reports whether t falls inside the validity window.
// Unset bounds are unbounded.
func (pc *PromoCode) WithinWindow(t time.Time) bool {
	if pc.ValidFrom != nil && t.Before(*pc.ValidFrom) {
		return false
	}
	if pc.ValidUntil != nil && t.After(*pc.ValidUntil) {
		return false
	}
	return true
}

// GlobalCapReached reports whether the global usage cap is exhausted.
func (pc *PromoCode) GlobalCapReached() bool {
	return pc.MaxUses > 0 && pc.UsedCount >= pc.MaxUses
}

// PromoInvalidReason tells the caller exactly which validation failed.
type PromoInvalidReason string

const (
	PromoReasonNotFound            PromoInvalidReason = "not_found"
	PromoReasonNotYetActive        PromoInvalidReason = "not_yet_active"
	PromoReasonExpired             PromoInvalidReason = "expired"
	PromoReasonUsageLimitReached   PromoInvalidReason = "usage_limit_reached"
	PromoReasonPerUserLimitReached PromoInvalidReason = "per_user_limit_reached"
)
