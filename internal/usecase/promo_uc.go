package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"inet-marketplace/internal/domain"
	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/repository"
)

// Compile-time check
var _ PromoUseCase = (*promoUC)(nil)

// PromoCreateInput carries the admin-facing fields of a new promo code.
type PromoCreateInput struct {
	Code            string
	Description     string
	Type            model.PromoType
	DiscountPercent int
	FixedAmount     int64
	FreeAccessDays  int
	MaxUses         int
	MaxUsesPerUser  int
	ValidFrom       *time.Time
	ValidUntil      *time.Time
	IsActive        *bool
}

type PromoUseCase interface {
	// Validate runs every redemption check for (code, user) and returns the
	// promo when all pass. On a failed check the reason is set and promo is
	// nil; err is reserved for internal failures.
	Validate(ctx context.Context, code, userID string) (*model.PromoCode, model.PromoInvalidReason, error)
	// Quote validates and, when planID is given, prices the plan under the
	// promo. Checks are repeated at checkout because time elapses between
	// quote and redemption.
	Quote(ctx context.Context, code, userID, planID string) (*model.PricingQuote, model.PromoInvalidReason, error)

	// Admin CRUD
	Create(ctx context.Context, in PromoCreateInput) (*model.PromoCode, error)
	Update(ctx context.Context, id string, in PromoCreateInput) (*model.PromoCode, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*model.PromoCode, error)
}

type promoUC struct {
	promos  repository.PromoCodeRepository
	intents repository.PurchaseIntentRepository
	plans   repository.ChannelPlanRepository
	log     *zerolog.Logger
}

func NewPromoUseCase(
	promos repository.PromoCodeRepository,
	intents repository.PurchaseIntentRepository,
	plans repository.ChannelPlanRepository,
	logger *zerolog.Logger,
) *promoUC {
	return &promoUC{promos: promos, intents: intents, plans: plans, log: logger}
}

func (u *promoUC) Validate(ctx context.Context, code, userID string) (*model.PromoCode, model.PromoInvalidReason, error) {
	code = model.NormalizePromoCode(code)
	if code == "" {
		return nil, model.PromoReasonNotFound, nil
	}

	promo, err := u.promos.FindByCode(ctx, repository.NoTX, code)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, model.PromoReasonNotFound, nil
		}
		return nil, "", err
	}
	if !promo.IsActive {
		return nil, model.PromoReasonNotFound, nil
	}

	now := time.Now()
	if promo.ValidFrom != nil && now.Before(*promo.ValidFrom) {
		return nil, model.PromoReasonNotYetActive, nil
	}
	if promo.ValidUntil != nil && now.After(*promo.ValidUntil) {
		return nil, model.PromoReasonExpired, nil
	}
	if promo.GlobalCapReached() {
		return nil, model.PromoReasonUsageLimitReached, nil
	}

	used, err := u.intents.CountCompletedByUserAndPromo(ctx, repository.NoTX, userID, promo.Code)
	if err != nil {
		return nil, "", err
	}
	if used >= promo.MaxUsesPerUser {
		return nil, model.PromoReasonPerUserLimitReached, nil
	}

	return promo, "", nil
}

func (u *promoUC) Quote(ctx context.Context, code, userID, planID string) (*model.PricingQuote, model.PromoInvalidReason, error) {
	promo, reason, err := u.Validate(ctx, code, userID)
	if err != nil || reason != "" {
		return nil, reason, err
	}

	var basePrice int64
	if planID != "" {
		plan, err := u.plans.FindByID(ctx, repository.NoTX, planID)
		if err != nil {
			return nil, "", err
		}
		basePrice = plan.Price
	}

	q := ComputeFinalPrice(basePrice, promo)
	return &q, "", nil
}

func (u *promoUC) Create(ctx context.Context, in PromoCreateInput) (*model.PromoCode, error) {
	pc, err := model.NewPromoCode(uuid.NewString(), in.Code, in.Type)
	if err != nil {
		return nil, err
	}

	if existing, err := u.promos.FindByCode(ctx, repository.NoTX, pc.Code); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	applyPromoInput(pc, in)
	if err := u.promos.Save(ctx, repository.NoTX, pc); err != nil {
		return nil, err
	}
	u.log.Info().Str("code", pc.Code).Str("type", string(pc.Type)).Msg("promo code created")
	return pc, nil
}

func (u *promoUC) Update(ctx context.Context, id string, in PromoCreateInput) (*model.PromoCode, error) {
	pc, err := u.promos.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if in.Code != "" {
		pc.Code = model.NormalizePromoCode(in.Code)
	}
	if in.Type != "" {
		pc.Type = in.Type
	}
	applyPromoInput(pc, in)
	pc.UpdatedAt = time.Now()
	if err := u.promos.Save(ctx, repository.NoTX, pc); err != nil {
		return nil, err
	}
	return pc, nil
}

func (u *promoUC) Delete(ctx context.Context, id string) error {
	return u.promos.Delete(ctx, repository.NoTX, id)
}

func (u *promoUC) List(ctx context.Context) ([]*model.PromoCode, error) {
	return u.promos.List(ctx, repository.NoTX)
}

func applyPromoInput(pc *model.PromoCode, in PromoCreateInput) {
	pc.Description = in.Description
	pc.DiscountPercent = in.DiscountPercent
	pc.FixedAmount = in.FixedAmount
	pc.FreeAccessDays = in.FreeAccessDays
	pc.MaxUses = in.MaxUses
	if in.MaxUsesPerUser > 0 {
		pc.MaxUsesPerUser = in.MaxUsesPerUser
	}
	pc.ValidFrom = in.ValidFrom
	pc.ValidUntil = in.ValidUntil
	if in.IsActive != nil {
		pc.IsActive = *in.IsActive
	}
}
