package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"inet-marketplace/internal/domain"
	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/adapter"
	"inet-marketplace/internal/domain/ports/repository"
	"inet-marketplace/internal/infra/metrics"
)

// Compile-time check
var _ ReconcileUseCase = (*reconcileUC)(nil)

// ReconcileUseCase drives pending intents to a terminal state. All
// terminal writes are conditional ("complete only if still pending"):
// concurrent polls, timeouts and the background sweeper may race on the
// same record, and exactly one of them may win.
type ReconcileUseCase interface {
	// PollStatus asks the gateway about a pending intent and applies the
	// outcome. Terminal records are returned as stored without contacting
	// the gateway. A gateway transport failure is reported as pending,
	// never as an error to the caller.
	PollStatus(ctx context.Context, userID, intentID string) (*model.PurchaseIntent, error)
	// ForceTimeout is the client-issued give-up signal: it fails the intent
	// and cancels fulfillment, but only if the record is still pending. A
	// timeout racing a just-completed poll is a no-op.
	ForceTimeout(ctx context.Context, userID, intentID string) (*model.PurchaseIntent, error)
	// VerifyManual is the explicit admin confirmation of a manual-proof
	// payment.
	VerifyManual(ctx context.Context, intentID string) (*model.PurchaseIntent, error)
	// UpdateFulfillment applies an admin's fulfillment edit. While a
	// manual-proof payment awaits verification, any non-cancelling status
	// change also flips the payment to completed.
	UpdateFulfillment(ctx context.Context, intentID string, upd repository.FulfillmentUpdate) (*model.PurchaseIntent, error)
	// ReconcileStale re-runs the poll path over pending USSD intents older
	// than the cutoff. Returns how many reached a terminal state.
	ReconcileStale(ctx context.Context, olderThan time.Time, limit int) (int, error)
}

type reconcileUC struct {
	intents   repository.PurchaseIntentRepository
	promoRepo repository.PromoCodeRepository
	gateway   adapter.PaymentGateway
	tx        repository.TransactionManager
	sink      adapter.NotificationSink
	log       *zerolog.Logger
}

func NewReconcileUseCase(
	intents repository.PurchaseIntentRepository,
	promoRepo repository.PromoCodeRepository,
	gateway adapter.PaymentGateway,
	tx repository.TransactionManager,
	sink adapter.NotificationSink,
	logger *zerolog.Logger,
) *reconcileUC {
	return &reconcileUC{
		intents:   intents,
		promoRepo: promoRepo,
		gateway:   gateway,
		tx:        tx,
		sink:      sink,
		log:       logger,
	}
}

func (u *reconcileUC) PollStatus(ctx context.Context, userID, intentID string) (*model.PurchaseIntent, error) {
	p, err := u.intents.FindByIDAndUser(ctx, repository.NoTX, intentID, userID)
	if err != nil {
		return nil, err
	}
	return u.reconcile(ctx, p)
}

// reconcile is the shared poll core for user polls and the stale sweeper.
func (u *reconcileUC) reconcile(ctx context.Context, p *model.PurchaseIntent) (*model.PurchaseIntent, error) {
	// Terminal and awaiting-verification records are returned as stored;
	// only an admin can move the latter.
	if p.PaymentStatus != model.PaymentStatusPending {
		return p, nil
	}

	if p.TransactionID == "" {
		// Nothing to poll; the paid flow never started.
		return u.fail(ctx, p, true, "no provider transaction recorded")
	}

	raw, err := u.gateway.CheckStatus(ctx, p.TransactionID)
	if err != nil {
		// Transport failure is inconclusive: leave the record pending and
		// let the user's next poll retry. Flaky gateway connectivity must
		// never read as a failed purchase.
		u.log.Warn().Err(err).Str("intent_id", p.ID).Msg("gateway status check inconclusive")
		return p, nil
	}

	switch model.NormalizePaymentStatus(raw) {
	case model.PaymentStatusCompleted:
		return u.complete(ctx, p)
	case model.PaymentStatusFailed:
		return u.fail(ctx, p, false, "")
	default:
		return p, nil
	}
}

// complete grants the entitlement. Status write, entitlement fields and
// the promo counter bump land in one transaction, guarded by the
// conditional update so that exactly one racing writer wins.
func (u *reconcileUC) complete(ctx context.Context, p *model.PurchaseIntent) (*model.PurchaseIntent, error) {
	now := time.Now()
	var start, end *time.Time
	isActive := false
	if p.ItemKind == model.ItemKindPlan {
		s := now
		e := now.Add(time.Duration(p.DurationDays) * 24 * time.Hour)
		start, end = &s, &e
		isActive = true
	}

	var won bool
	err := u.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		w, err := u.intents.CompleteIfPending(ctx, tx, p.ID, start, end, isActive)
		if err != nil {
			return err
		}
		won = w
		if w && p.PromoCode != "" {
			err := u.promoRepo.IncrementUsage(ctx, tx, p.PromoCode)
			if errors.Is(err, domain.ErrPromoExhausted) {
				// The money is already collected; grant the entitlement
				// and leave the counter at its cap.
				u.log.Warn().Str("intent_id", p.ID).Str("promo", p.PromoCode).Msg("promo cap reached after payment, completing without usage bump")
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !won {
		// Another writer got there first; report whatever it decided.
		return u.intents.FindByID(ctx, repository.NoTX, p.ID)
	}

	p.PaymentStatus = model.PaymentStatusCompleted
	p.StartDate = start
	p.EndDate = end
	p.IsActive = isActive
	p.UpdatedAt = now

	metrics.IncPurchase(string(p.ItemKind), string(p.PaymentStatus))
	metrics.AddPurchaseRevenue(p.Currency, p.Amount)
	if p.PromoCode != "" {
		metrics.IncPromoRedemption(p.PromoCode)
	}
	dispatch(ctx, u.sink, u.log, notePaymentCompleted(p))
	u.log.Info().Str("intent_id", p.ID).Str("kind", string(p.ItemKind)).Int64("amount", p.Amount).Msg("payment completed")
	return p, nil
}

func (u *reconcileUC) fail(ctx context.Context, p *model.PurchaseIntent, cancelFulfillment bool, note string) (*model.PurchaseIntent, error) {
	won, err := u.intents.FailIfPending(ctx, repository.NoTX, p.ID, cancelFulfillment, note)
	if err != nil {
		return nil, err
	}
	if !won {
		return u.intents.FindByID(ctx, repository.NoTX, p.ID)
	}

	p.PaymentStatus = model.PaymentStatusFailed
	if cancelFulfillment && p.ItemKind == model.ItemKindService {
		p.Fulfillment = model.FulfillmentCancelled
	}
	if note != "" {
		p.AdminNote = note
	}
	p.UpdatedAt = time.Now()

	metrics.IncPurchase(string(p.ItemKind), string(p.PaymentStatus))
	dispatch(ctx, u.sink, u.log, notePaymentFailed(p))
	u.log.Info().Str("intent_id", p.ID).Bool("cancelled", cancelFulfillment).Msg("payment failed")
	return p, nil
}

func (u *reconcileUC) ForceTimeout(ctx context.Context, userID, intentID string) (*model.PurchaseIntent, error) {
	p, err := u.intents.FindByIDAndUser(ctx, repository.NoTX, intentID, userID)
	if err != nil {
		return nil, err
	}
	if p.PaymentStatus != model.PaymentStatusPending {
		// Raced with a poll that already settled the record; do not clobber.
		return p, nil
	}
	return u.fail(ctx, p, true, "Payment timed out - customer did not confirm the USSD push")
}

func (u *reconcileUC) VerifyManual(ctx context.Context, intentID string) (*model.PurchaseIntent, error) {
	p, err := u.intents.FindByID(ctx, repository.NoTX, intentID)
	if err != nil {
		return nil, err
	}
	if p.PaymentMethod != model.PaymentMethodManual || p.PaymentStatus != model.PaymentStatusAwaitingVerification {
		return nil, domain.ErrIntentNotPending
	}
	won, err := u.intents.CompleteIfAwaitingVerification(ctx, repository.NoTX, intentID)
	if err != nil {
		return nil, err
	}
	if won {
		p.PaymentStatus = model.PaymentStatusCompleted
		metrics.IncPurchase(string(p.ItemKind), string(p.PaymentStatus))
		metrics.AddPurchaseRevenue(p.Currency, p.Amount)
		dispatch(ctx, u.sink, u.log, notePaymentVerified(p))
	}
	return u.intents.FindByID(ctx, repository.NoTX, intentID)
}

func (u *reconcileUC) UpdateFulfillment(ctx context.Context, intentID string, upd repository.FulfillmentUpdate) (*model.PurchaseIntent, error) {
	old, err := u.intents.FindByID(ctx, repository.NoTX, intentID)
	if err != nil {
		return nil, err
	}

	if err := u.intents.UpdateFulfillment(ctx, repository.NoTX, intentID, upd); err != nil {
		return nil, err
	}

	// Processing a manual order implies the admin has checked the proof:
	// any non-cancelling status change verifies the payment as a side
	// effect. (Flagged for product review; behavior preserved as shipped.)
	verified := false
	if old.PaymentMethod == model.PaymentMethodManual &&
		old.PaymentStatus == model.PaymentStatusAwaitingVerification &&
		upd.Status != nil && *upd.Status != model.FulfillmentCancelled {
		won, err := u.intents.CompleteIfAwaitingVerification(ctx, repository.NoTX, intentID)
		if err != nil {
			return nil, err
		}
		verified = won
	}

	p, err := u.intents.FindByID(ctx, repository.NoTX, intentID)
	if err != nil {
		return nil, err
	}

	if verified {
		metrics.IncPurchase(string(p.ItemKind), string(p.PaymentStatus))
		metrics.AddPurchaseRevenue(p.Currency, p.Amount)
		dispatch(ctx, u.sink, u.log, notePaymentVerified(p))
	}
	if upd.Status != nil && *upd.Status != old.Fulfillment {
		dispatch(ctx, u.sink, u.log, noteFulfillmentChange(p, *upd.Status))
	}
	if upd.Credentials != nil && old.Credentials.IsZero() && !p.Credentials.IsZero() {
		dispatch(ctx, u.sink, u.log, noteCredentialsAdded(p))
	}
	return p, nil
}

func (u *reconcileUC) ReconcileStale(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	pending, err := u.intents.ListPendingOlderThan(ctx, repository.NoTX, olderThan, limit)
	if err != nil {
		if err == domain.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}

	settled := 0
	for _, p := range pending {
		if p.TransactionID == "" {
			continue
		}
		out, err := u.reconcile(ctx, p)
		if err != nil {
			u.log.Error().Err(err).Str("intent_id", p.ID).Msg("stale reconcile failed")
			continue
		}
		if out.PaymentStatus.IsTerminal() {
			settled++
		}
	}
	return settled, nil
}
