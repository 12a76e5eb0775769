package model

// PricingQuote is the outcome of applying an optional promo code to a base
// price. FinalPrice and Discount are in integer currency units; for
// free-access promos FinalPrice is zero and FreeAccessDays carries the
// granted duration instead of a discount.
type PricingQuote struct {
	OriginalPrice  int64
	FinalPrice     int64
	Discount       int64
	FreeAccessDays int
	PromoCode      string    // canonical code if a promo was applied
	PromoType      PromoType // empty if no promo
	Description    string    // human-readable summary, e.g. "20% off"
}
