package web

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// tzPhonePattern accepts Tanzanian MSISDNs: +255/255 prefix or local 0,
// followed by nine digits.
var tzPhonePattern = regexp.MustCompile(`^(\+?255|0)\d{9}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("tzphone", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true // pair with required where the field is mandatory
		}
		return tzPhonePattern.MatchString(s)
	}); err != nil {
		panic(err)
	}
	return v
}

type serviceOrderRequest struct {
	ServiceID string `json:"service_id" validate:"required"`
	Phone     string `json:"phone" validate:"required,tzphone"`
	PayerName string `json:"payer_name" validate:"max=120"`
}

type manualOrderRequest struct {
	ServiceID string `json:"service_id" validate:"required"`
	Phone     string `json:"phone" validate:"required,tzphone"`
	Proof     string `json:"proof" validate:"required,min=10"`
}

type planPurchaseRequest struct {
	PlanID    string `json:"plan_id" validate:"required"`
	Phone     string `json:"phone" validate:"omitempty,tzphone"`
	PayerName string `json:"payer_name" validate:"max=120"`
	PromoCode string `json:"promo_code" validate:"max=64"`
}

type videoPurchaseRequest struct {
	VideoID   string `json:"video_id" validate:"required"`
	Phone     string `json:"phone" validate:"required,tzphone"`
	PayerName string `json:"payer_name" validate:"max=120"`
}

type promoValidateRequest struct {
	Code   string `json:"code" validate:"required,max=64"`
	PlanID string `json:"plan_id"`
}

type promoUpsertRequest struct {
	Code            string     `json:"code" validate:"max=64"`
	Description     string     `json:"description" validate:"max=500"`
	Type            string     `json:"type" validate:"omitempty,oneof=discount fixed free_access"`
	DiscountPercent int        `json:"discount_percent" validate:"gte=0,lte=100"`
	FixedAmount     int64      `json:"fixed_amount" validate:"gte=0"`
	FreeAccessDays  int        `json:"free_access_days" validate:"gte=0"`
	MaxUses         int        `json:"max_uses" validate:"gte=0"`
	MaxUsesPerUser  int        `json:"max_uses_per_user" validate:"gte=0"`
	ValidFrom       *time.Time `json:"valid_from"`
	ValidUntil      *time.Time `json:"valid_until"`
	IsActive        *bool      `json:"is_active"`
}

type planUpsertRequest struct {
	Name         string `json:"name" validate:"max=200"`
	Description  string `json:"description" validate:"max=1000"`
	DurationType string `json:"duration_type" validate:"omitempty,oneof=weekly monthly yearly"`
	Price        *int64 `json:"price" validate:"omitempty,gte=0"`
	IsActive     *bool  `json:"is_active"`
	SortOrder    *int   `json:"sort_order"`
}

type fulfillmentRequest struct {
	Status      *string `json:"status" validate:"omitempty,oneof=pending processing active delivered cancelled expired"`
	AdminNote   *string `json:"admin_note" validate:"omitempty,max=1000"`
	Credentials *struct {
		Username       string `json:"username" validate:"max=200"`
		Password       string `json:"password" validate:"max=200"`
		AccountDetails string `json:"account_details" validate:"max=2000"`
	} `json:"credentials"`
}
