package usecase

import (
	"fmt"

	"inet-marketplace/internal/domain/model"
)

// ComputeFinalPrice applies an optional promo code to a base price and
// returns the resulting quote. The function is pure over its inputs: it
// does not check usage caps or validity windows, which are the promo
// registry's job and must be enforced before calling this.
//
// All monetary math is in integer currency units; percentage discounts
// round to the nearest unit (half up), never truncating intermediates.
func ComputeFinalPrice(basePrice int64, promo *model.PromoCode) model.PricingQuote {
	q := model.PricingQuote{
		OriginalPrice: basePrice,
		FinalPrice:    basePrice,
	}
	if promo == nil {
		return q
	}

	q.PromoCode = promo.Code
	q.PromoType = promo.Type

	switch promo.Type {
	case model.PromoTypeDiscount:
		q.Discount = (basePrice*int64(promo.DiscountPercent) + 50) / 100
		q.FinalPrice = basePrice - q.Discount
		q.Description = fmt.Sprintf("%d%% off", promo.DiscountPercent)
	case model.PromoTypeFixed:
		q.Discount = promo.FixedAmount
		if q.Discount > basePrice {
			q.Discount = basePrice
		}
		q.FinalPrice = basePrice - q.Discount
		q.Description = fmt.Sprintf("TZS %d off", promo.FixedAmount)
	case model.PromoTypeFreeAccess:
		q.FinalPrice = 0
		q.FreeAccessDays = promo.FreeAccessDays
		q.Description = fmt.Sprintf("%d days free access", promo.FreeAccessDays)
	}
	return q
}
