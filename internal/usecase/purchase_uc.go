package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"inet-marketplace/internal/domain"
	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/adapter"
	"inet-marketplace/internal/domain/ports/repository"
	"inet-marketplace/internal/infra/metrics"
)

// Locker serializes purchase initiation per (user, item) so a double-tap
// cannot trigger two USSD pushes. Implementations are best-effort
// distributed locks; a nil Locker disables the guard (unit tests).
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// Compile-time check
var _ PurchaseUseCase = (*purchaseUC)(nil)

// PurchaseUseCase creates ledger records. Every initiation either ends in
// a pending intent awaiting reconciliation, an awaiting_verification
// intent for an admin, or an immediately completed intent when a promo
// drives the price to zero.
type PurchaseUseCase interface {
	// InitiateService starts a USSD-paid service order.
	InitiateService(ctx context.Context, userID, serviceID, phone, payerName string) (*model.PurchaseIntent, error)
	// InitiateManualService records a proof-of-payment order for admin verification.
	InitiateManualService(ctx context.Context, userID, serviceID, phone, proof string) (*model.PurchaseIntent, error)
	// InitiatePlan starts a channel subscription purchase, optionally under
	// a promo code. A free-access promo completes immediately with no
	// gateway round-trip. Returns ErrAlreadySubscribed with the existing
	// intent when an active subscription already covers the user.
	InitiatePlan(ctx context.Context, userID, planID, phone, payerName, promoCode string) (*model.PurchaseIntent, error)
	// InitiateVideo starts a pay-per-view unlock. Returns
	// ErrAlreadyPurchased with the existing intent when already unlocked.
	InitiateVideo(ctx context.Context, userID, videoID, phone, payerName string) (*model.PurchaseIntent, error)

	// Reads
	GetMine(ctx context.Context, userID, intentID string) (*model.PurchaseIntent, error)
	ListMine(ctx context.Context, userID string, kind model.ItemKind) ([]*model.PurchaseIntent, error)
	MySubscription(ctx context.Context, userID string) (*model.PurchaseIntent, error)
	HasVideoUnlock(ctx context.Context, userID, videoID string) (bool, error)
}

type purchaseUC struct {
	intents   repository.PurchaseIntentRepository
	plans     repository.ChannelPlanRepository
	services  repository.ServiceRepository
	videos    repository.VideoRepository
	promos    PromoUseCase
	promoRepo repository.PromoCodeRepository
	gateway   adapter.PaymentGateway
	tx        repository.TransactionManager
	locker    Locker
	sink      adapter.NotificationSink
	log       *zerolog.Logger
}

func NewPurchaseUseCase(
	intents repository.PurchaseIntentRepository,
	plans repository.ChannelPlanRepository,
	services repository.ServiceRepository,
	videos repository.VideoRepository,
	promos PromoUseCase,
	promoRepo repository.PromoCodeRepository,
	gateway adapter.PaymentGateway,
	tx repository.TransactionManager,
	locker Locker,
	sink adapter.NotificationSink,
	logger *zerolog.Logger,
) *purchaseUC {
	return &purchaseUC{
		intents:   intents,
		plans:     plans,
		services:  services,
		videos:    videos,
		promos:    promos,
		promoRepo: promoRepo,
		gateway:   gateway,
		tx:        tx,
		locker:    locker,
		sink:      sink,
		log:       logger,
	}
}

const initiationLockTTL = 30 * time.Second

func (u *purchaseUC) acquire(ctx context.Context, userID, itemID string) (func(), error) {
	if u.locker == nil {
		return func() {}, nil
	}
	key := "initiate:" + userID + ":" + itemID
	token, err := u.locker.TryLock(ctx, key, initiationLockTTL)
	if err != nil {
		return nil, domain.ErrLockBusy
	}
	return func() { _ = u.locker.Unlock(ctx, key, token) }, nil
}

func (u *purchaseUC) InitiateService(ctx context.Context, userID, serviceID, phone, payerName string) (*model.PurchaseIntent, error) {
	if userID == "" || serviceID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if phone == "" {
		return nil, domain.ErrPhoneRequired
	}

	svc, err := u.services.FindByID(ctx, repository.NoTX, serviceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive || svc.Price <= 0 {
		return nil, domain.ErrItemUnavailable
	}

	release, err := u.acquire(ctx, userID, serviceID)
	if err != nil {
		return nil, err
	}
	defer release()

	txn, err := u.gateway.CreateTransaction(ctx, phone, svc.Price, payerName)
	if err != nil {
		return nil, err
	}

	p, err := model.NewPurchaseIntent(newIntentID(), userID, model.ItemKindService, serviceID, svc.Price)
	if err != nil {
		return nil, err
	}
	p.ItemName = svc.Name
	p.BasePrice = svc.Price
	p.Currency = svc.Currency
	p.PhoneNumber = phone
	p.TransactionID = txn.TranID
	p.Network = txn.Network

	if err := u.intents.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	metrics.IncPurchase(string(p.ItemKind), string(p.PaymentStatus))
	u.log.Info().Str("intent_id", p.ID).Str("tran_id", txn.TranID).Str("network", txn.Network).Msg("service order initiated")
	return p, nil
}

func (u *purchaseUC) InitiateManualService(ctx context.Context, userID, serviceID, phone, proof string) (*model.PurchaseIntent, error) {
	if userID == "" || serviceID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if phone == "" {
		return nil, domain.ErrPhoneRequired
	}
	proof = strings.TrimSpace(proof)
	if len(proof) < 10 {
		return nil, domain.ErrProofRequired
	}

	svc, err := u.services.FindByID(ctx, repository.NoTX, serviceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive || svc.Price <= 0 {
		return nil, domain.ErrItemUnavailable
	}

	p, err := model.NewPurchaseIntent(newIntentID(), userID, model.ItemKindService, serviceID, svc.Price)
	if err != nil {
		return nil, err
	}
	p.ItemName = svc.Name
	p.BasePrice = svc.Price
	p.Currency = svc.Currency
	p.PhoneNumber = phone
	p.PaymentMethod = model.PaymentMethodManual
	p.PaymentStatus = model.PaymentStatusAwaitingVerification
	p.PaymentProof = proof

	if err := u.intents.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	metrics.IncPurchase(string(p.ItemKind), string(p.PaymentStatus))
	return p, nil
}

func (u *purchaseUC) InitiatePlan(ctx context.Context, userID, planID, phone, payerName, promoCode string) (*model.PurchaseIntent, error) {
	if userID == "" || planID == "" {
		return nil, domain.ErrInvalidArgument
	}

	plan, err := u.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, domain.ErrItemUnavailable
	}

	// Active subscription short-circuits without charging.
	if existing, err := u.intents.FindActiveSubscription(ctx, repository.NoTX, userID, time.Now()); err == nil && existing != nil {
		return existing, domain.ErrAlreadySubscribed
	}

	var promo *model.PromoCode
	if promoCode != "" {
		p, reason, err := u.promos.Validate(ctx, promoCode, userID)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrPromoInvalid, reason)
		}
		promo = p
	}

	quote := ComputeFinalPrice(plan.Price, promo)

	days := plan.DurationDays
	if quote.FreeAccessDays > 0 {
		days = quote.FreeAccessDays
	}

	// The lock also covers free redemptions: each racer would insert its own
	// completed intent, so the conditional update cannot dedupe them.
	release, err := u.acquire(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	defer release()

	if quote.FinalPrice <= 0 {
		return u.activateFreePlan(ctx, userID, plan, quote, days)
	}

	if phone == "" {
		return nil, domain.ErrPhoneRequired
	}

	txn, err := u.gateway.CreateTransaction(ctx, phone, quote.FinalPrice, payerName)
	if err != nil {
		return nil, err
	}

	p, err := model.NewPurchaseIntent(newIntentID(), userID, model.ItemKindPlan, planID, quote.FinalPrice)
	if err != nil {
		return nil, err
	}
	p.ItemName = plan.Name
	p.BasePrice = plan.Price
	p.Discount = quote.OriginalPrice - quote.FinalPrice
	p.PromoCode = quote.PromoCode
	p.DurationDays = days
	p.PhoneNumber = phone
	p.TransactionID = txn.TranID
	p.Network = txn.Network

	if err := u.intents.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	metrics.IncPurchase(string(p.ItemKind), string(p.PaymentStatus))
	u.log.Info().Str("intent_id", p.ID).Str("plan", plan.Name).Int64("amount", p.Amount).Msg("subscription initiated")
	return p, nil
}

// activateFreePlan completes a zero-priced subscription immediately: no
// gateway round-trip, entitlement granted and the promo counter bumped in
// the same transaction as the record insert.
func (u *purchaseUC) activateFreePlan(ctx context.Context, userID string, plan *model.ChannelPlan, quote model.PricingQuote, days int) (*model.PurchaseIntent, error) {
	p, err := model.NewPurchaseIntent(newIntentID(), userID, model.ItemKindPlan, plan.ID, 0)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	end := now.Add(time.Duration(days) * 24 * time.Hour)
	p.ItemName = plan.Name
	p.BasePrice = plan.Price
	p.Discount = quote.OriginalPrice - quote.FinalPrice
	p.PromoCode = quote.PromoCode
	p.DurationDays = days
	p.PaymentMethod = model.PaymentMethodPromo
	p.PaymentStatus = model.PaymentStatusCompleted
	p.StartDate = &now
	p.EndDate = &end
	p.IsActive = true

	err = u.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.intents.Save(ctx, tx, p); err != nil {
			return err
		}
		if p.PromoCode != "" {
			return u.promoRepo.IncrementUsage(ctx, tx, p.PromoCode)
		}
		return nil
	})
	if errors.Is(err, domain.ErrPromoExhausted) {
		// A racing redemption took the last slot between Validate and here.
		return nil, fmt.Errorf("%w: usage_limit_reached", domain.ErrPromoInvalid)
	}
	if err != nil {
		return nil, err
	}

	metrics.IncPurchase(string(p.ItemKind), string(p.PaymentStatus))
	if p.PromoCode != "" {
		metrics.IncPromoRedemption(p.PromoCode)
	}
	dispatch(ctx, u.sink, u.log, notePaymentCompleted(p))
	u.log.Info().Str("intent_id", p.ID).Str("promo", p.PromoCode).Int("days", days).Msg("free subscription activated")
	return p, nil
}

func (u *purchaseUC) InitiateVideo(ctx context.Context, userID, videoID, phone, payerName string) (*model.PurchaseIntent, error) {
	if userID == "" || videoID == "" {
		return nil, domain.ErrInvalidArgument
	}

	video, err := u.videos.FindByID(ctx, repository.NoTX, videoID)
	if err != nil {
		return nil, err
	}
	if !video.IsPaid() {
		return nil, domain.ErrInvalidArgument
	}
	if !video.IsActive {
		return nil, domain.ErrItemUnavailable
	}

	// Unlock-style item: one completed purchase per (user, video).
	if existing, err := u.intents.FindCompletedUnlock(ctx, repository.NoTX, userID, model.ItemKindVideo, videoID); err == nil && existing != nil {
		return existing, domain.ErrAlreadyPurchased
	}

	if phone == "" {
		return nil, domain.ErrPhoneRequired
	}

	release, err := u.acquire(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	defer release()

	txn, err := u.gateway.CreateTransaction(ctx, phone, video.Price, payerName)
	if err != nil {
		return nil, err
	}

	p, err := model.NewPurchaseIntent(newIntentID(), userID, model.ItemKindVideo, videoID, video.Price)
	if err != nil {
		return nil, err
	}
	p.ItemName = video.Title
	p.BasePrice = video.Price
	p.PhoneNumber = phone
	p.TransactionID = txn.TranID
	p.Network = txn.Network

	if err := u.intents.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	metrics.IncPurchase(string(p.ItemKind), string(p.PaymentStatus))
	return p, nil
}

func (u *purchaseUC) GetMine(ctx context.Context, userID, intentID string) (*model.PurchaseIntent, error) {
	return u.intents.FindByIDAndUser(ctx, repository.NoTX, intentID, userID)
}

func (u *purchaseUC) ListMine(ctx context.Context, userID string, kind model.ItemKind) ([]*model.PurchaseIntent, error) {
	return u.intents.ListByUser(ctx, repository.NoTX, userID, kind)
}

func (u *purchaseUC) MySubscription(ctx context.Context, userID string) (*model.PurchaseIntent, error) {
	return u.intents.FindActiveSubscription(ctx, repository.NoTX, userID, time.Now())
}

func (u *purchaseUC) HasVideoUnlock(ctx context.Context, userID, videoID string) (bool, error) {
	_, err := u.intents.FindCompletedUnlock(ctx, repository.NoTX, userID, model.ItemKindVideo, videoID)
	if err == domain.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func newIntentID() string {
	return ulid.Make().String()
}
