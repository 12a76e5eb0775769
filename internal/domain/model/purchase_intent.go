package model

import (
	"time"

	"inet-marketplace/internal/domain"
)

// CurrencyTZS is the only settlement currency the provider supports.
const CurrencyTZS = "TZS"

// ItemKind discriminates what a PurchaseIntent is buying.
type ItemKind string

const (
	ItemKindService ItemKind = "service" // marketplace service order, fulfilled by an admin
	ItemKindPlan    ItemKind = "plan"    // video-channel subscription bundle
	ItemKindVideo   ItemKind = "video"   // pay-per-view unlock
)

// IsUnlock reports whether the kind grants a one-shot unlock: at most one
// completed intent per (user, item). Service orders are multi-instance.
func (k ItemKind) IsUnlock() bool { return k == ItemKindVideo }

type FulfillmentStatus string

const (
	FulfillmentPending    FulfillmentStatus = "pending"
	FulfillmentProcessing FulfillmentStatus = "processing"
	FulfillmentActive     FulfillmentStatus = "active"
	FulfillmentDelivered  FulfillmentStatus = "delivered"
	FulfillmentCancelled  FulfillmentStatus = "cancelled"
	FulfillmentExpired    FulfillmentStatus = "expired"
)

// Credentials is the delivery payload an admin attaches to a service order.
type Credentials struct {
	Username       string
	Password       string
	AccountDetails string
}

func (c Credentials) IsZero() bool {
	return c.Username == "" && c.Password == "" && c.AccountDetails == ""
}

// PurchaseIntent is one attempt by one user to acquire one priced item.
// It is the single ledger record behind service orders, channel
// subscriptions and video unlocks; kind-specific entitlement fields are
// only populated for the matching ItemKind. Intents are never deleted.
type PurchaseIntent struct {
	ID       string // ULID, sortable by creation time
	UserID   string
	ItemKind ItemKind
	ItemID   string

	// Snapshot of the item at purchase time. Amount is the price actually
	// charged; it is never recomputed after creation.
	ItemName  string
	BasePrice int64
	Amount    int64
	Discount  int64
	Currency  string
	PromoCode string // canonical uppercase, empty = none

	// Plans: entitlement duration in days (promo free-access days override
	// the plan's own duration).
	DurationDays int

	PaymentMethod PaymentMethod
	TransactionID string // FastLipa tranID, empty until a paid flow starts
	Network       string // mobile network reported by the provider
	PhoneNumber   string
	PaymentProof  string // manual method only
	PaymentStatus PaymentStatus

	// Entitlement window (plans only).
	StartDate *time.Time
	EndDate   *time.Time
	IsActive  bool

	// Fulfillment (service orders only), decoupled from payment status.
	Fulfillment FulfillmentStatus
	Credentials Credentials
	AdminNote   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPurchaseIntent validates and constructs a pending intent.
func NewPurchaseIntent(id, userID string, kind ItemKind, itemID string, amount int64) (*PurchaseIntent, error) {
	if id == "" || userID == "" || itemID == "" || amount < 0 {
		return nil, domain.ErrInvalidArgument
	}
	switch kind {
	case ItemKindService, ItemKindPlan, ItemKindVideo:
	default:
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &PurchaseIntent{
		ID:            id,
		UserID:        userID,
		ItemKind:      kind,
		ItemID:        itemID,
		Amount:        amount,
		Currency:      CurrencyTZS,
		PaymentMethod: PaymentMethodUSSD,
		PaymentStatus: PaymentStatusPending,
		Fulfillment:   FulfillmentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// SubscriptionActive reports whether the intent grants channel access at t.
func (p *PurchaseIntent) SubscriptionActive(t time.Time) bool {
	return p.ItemKind == ItemKindPlan &&
		p.PaymentStatus == PaymentStatusCompleted &&
		p.IsActive &&
		p.EndDate != nil && p.EndDate.After(t)
}

// DaysRemaining returns the whole days left on the entitlement window,
// rounded up. Zero when there is no window or it has lapsed.
func (p *PurchaseIntent) DaysRemaining(t time.Time) int {
	if p.EndDate == nil || !p.EndDate.After(t) {
		return 0
	}
	d := p.EndDate.Sub(t)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}
