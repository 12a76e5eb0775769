//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"inet-marketplace/internal/domain"
	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/repository"
)

func fulfillmentUpdate(status model.FulfillmentStatus, note *string, creds *model.Credentials) repository.FulfillmentUpdate {
	return repository.FulfillmentUpdate{Status: &status, AdminNote: note, Credentials: creds}
}

func newTestIntent(t *testing.T, userID string, kind model.ItemKind, itemID string, amount int64) *model.PurchaseIntent {
	t.Helper()
	p, err := model.NewPurchaseIntent(ulid.Make().String(), userID, kind, itemID, amount)
	if err != nil {
		t.Fatalf("NewPurchaseIntent: %v", err)
	}
	return p
}

func TestPurchaseIntentRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewPurchaseIntentRepo(testPool)

	t.Run("should save and find an intent", func(t *testing.T) {
		cleanup(t)

		p := newTestIntent(t, "user-1", model.ItemKindService, "svc-1", 15000)
		p.ItemName = "Netflix Account"
		p.TransactionID = "TX-1"
		if err := repo.Save(ctx, nil, p); err != nil {
			t.Fatalf("Save: %v", err)
		}

		found, err := repo.FindByID(ctx, nil, p.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if found.ItemName != "Netflix Account" || found.Amount != 15000 || found.PaymentStatus != model.PaymentStatusPending {
			t.Errorf("unexpected intent %+v", found)
		}
	})

	t.Run("FindByIDAndUser hides other users' intents", func(t *testing.T) {
		cleanup(t)

		p := newTestIntent(t, "user-1", model.ItemKindService, "svc-1", 1000)
		if err := repo.Save(ctx, nil, p); err != nil {
			t.Fatalf("Save: %v", err)
		}

		if _, err := repo.FindByIDAndUser(ctx, nil, p.ID, "user-2"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("want ErrNotFound for foreign user, got %v", err)
		}
	})

	t.Run("CompleteIfPending wins exactly once", func(t *testing.T) {
		cleanup(t)

		p := newTestIntent(t, "user-1", model.ItemKindPlan, "plan-1", 5000)
		p.DurationDays = 30
		if err := repo.Save(ctx, nil, p); err != nil {
			t.Fatalf("Save: %v", err)
		}

		start := time.Now()
		end := start.Add(30 * 24 * time.Hour)
		won, err := repo.CompleteIfPending(ctx, nil, p.ID, &start, &end, true)
		if err != nil || !won {
			t.Fatalf("first CompleteIfPending: won=%v err=%v", won, err)
		}

		won, err = repo.CompleteIfPending(ctx, nil, p.ID, &start, &end, true)
		if err != nil {
			t.Fatalf("second CompleteIfPending: %v", err)
		}
		if won {
			t.Fatal("second CompleteIfPending must not win")
		}

		// A late failure must not clobber the completed state either.
		won, err = repo.FailIfPending(ctx, nil, p.ID, true, "timed out")
		if err != nil {
			t.Fatalf("FailIfPending: %v", err)
		}
		if won {
			t.Fatal("FailIfPending must not win on a completed intent")
		}

		found, err := repo.FindByID(ctx, nil, p.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if found.PaymentStatus != model.PaymentStatusCompleted || !found.IsActive {
			t.Errorf("intent not completed: %+v", found)
		}
	})

	t.Run("FailIfPending cancels fulfillment when asked", func(t *testing.T) {
		cleanup(t)

		p := newTestIntent(t, "user-1", model.ItemKindService, "svc-1", 1000)
		if err := repo.Save(ctx, nil, p); err != nil {
			t.Fatalf("Save: %v", err)
		}

		won, err := repo.FailIfPending(ctx, nil, p.ID, true, "provider declined")
		if err != nil || !won {
			t.Fatalf("FailIfPending: won=%v err=%v", won, err)
		}

		found, _ := repo.FindByID(ctx, nil, p.ID)
		if found.PaymentStatus != model.PaymentStatusFailed || found.Fulfillment != model.FulfillmentCancelled {
			t.Errorf("unexpected state %+v", found)
		}
		if found.AdminNote != "provider declined" {
			t.Errorf("admin note = %q", found.AdminNote)
		}
	})

	t.Run("CompleteIfAwaitingVerification only moves manual intents", func(t *testing.T) {
		cleanup(t)

		p := newTestIntent(t, "user-1", model.ItemKindService, "svc-1", 1000)
		p.PaymentMethod = model.PaymentMethodManual
		p.PaymentStatus = model.PaymentStatusAwaitingVerification
		p.PaymentProof = "M-Pesa confirmation ABCD1234"
		if err := repo.Save(ctx, nil, p); err != nil {
			t.Fatalf("Save: %v", err)
		}

		won, err := repo.CompleteIfAwaitingVerification(ctx, nil, p.ID)
		if err != nil || !won {
			t.Fatalf("CompleteIfAwaitingVerification: won=%v err=%v", won, err)
		}
		won, _ = repo.CompleteIfAwaitingVerification(ctx, nil, p.ID)
		if won {
			t.Fatal("second verification must not win")
		}
	})

	t.Run("FindActiveSubscription prefers the latest end date", func(t *testing.T) {
		cleanup(t)

		now := time.Now()
		for i, days := range []int{7, 30} {
			p := newTestIntent(t, "user-1", model.ItemKindPlan, "plan-1", 5000)
			p.PaymentStatus = model.PaymentStatusCompleted
			p.IsActive = true
			start := now
			end := now.Add(time.Duration(days) * 24 * time.Hour)
			p.StartDate, p.EndDate = &start, &end
			p.CreatedAt = now.Add(time.Duration(i) * time.Minute)
			if err := repo.Save(ctx, nil, p); err != nil {
				t.Fatalf("Save: %v", err)
			}
		}

		sub, err := repo.FindActiveSubscription(ctx, nil, "user-1", now)
		if err != nil {
			t.Fatalf("FindActiveSubscription: %v", err)
		}
		if got := sub.DaysRemaining(now); got != 30 {
			t.Errorf("DaysRemaining = %d, want 30", got)
		}

		if _, err := repo.FindActiveSubscription(ctx, nil, "user-2", now); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("want ErrNotFound for user without subscription, got %v", err)
		}
	})

	t.Run("ListPendingOlderThan only returns stale ussd intents", func(t *testing.T) {
		cleanup(t)

		old := newTestIntent(t, "user-1", model.ItemKindService, "svc-1", 1000)
		old.CreatedAt = time.Now().Add(-10 * time.Minute)
		fresh := newTestIntent(t, "user-1", model.ItemKindService, "svc-2", 1000)
		manual := newTestIntent(t, "user-1", model.ItemKindService, "svc-3", 1000)
		manual.PaymentMethod = model.PaymentMethodManual
		manual.PaymentStatus = model.PaymentStatusAwaitingVerification
		manual.CreatedAt = old.CreatedAt
		for _, p := range []*model.PurchaseIntent{old, fresh, manual} {
			if err := repo.Save(ctx, nil, p); err != nil {
				t.Fatalf("Save: %v", err)
			}
		}

		got, err := repo.ListPendingOlderThan(ctx, nil, time.Now().Add(-5*time.Minute), 10)
		if err != nil {
			t.Fatalf("ListPendingOlderThan: %v", err)
		}
		if len(got) != 1 || got[0].ID != old.ID {
			t.Errorf("got %d stale intents, want exactly the old ussd one", len(got))
		}
	})

	t.Run("UpdateFulfillment applies partial edits", func(t *testing.T) {
		cleanup(t)

		p := newTestIntent(t, "user-1", model.ItemKindService, "svc-1", 1000)
		p.AdminNote = "keep me"
		if err := repo.Save(ctx, nil, p); err != nil {
			t.Fatalf("Save: %v", err)
		}

		status := model.FulfillmentDelivered
		creds := &model.Credentials{Username: "acct@example.com", Password: "s3cret"}
		err := repo.UpdateFulfillment(ctx, nil, p.ID, fulfillmentUpdate(status, nil, creds))
		if err != nil {
			t.Fatalf("UpdateFulfillment: %v", err)
		}

		found, _ := repo.FindByID(ctx, nil, p.ID)
		if found.Fulfillment != model.FulfillmentDelivered || found.Credentials.Username != "acct@example.com" {
			t.Errorf("unexpected state %+v", found)
		}
		if found.AdminNote != "keep me" {
			t.Errorf("nil AdminNote must not clear the stored note, got %q", found.AdminNote)
		}
	})

	t.Run("stats reflect stored intents", func(t *testing.T) {
		cleanup(t)

		sub := newTestIntent(t, "user-1", model.ItemKindPlan, "plan-1", 5000)
		sub.PaymentStatus = model.PaymentStatusCompleted
		sub.IsActive = true
		now := time.Now()
		end := now.Add(7 * 24 * time.Hour)
		sub.StartDate, sub.EndDate = &now, &end

		order := newTestIntent(t, "user-2", model.ItemKindService, "svc-1", 15000)
		order.PaymentStatus = model.PaymentStatusCompleted
		order.Fulfillment = model.FulfillmentProcessing

		failed := newTestIntent(t, "user-3", model.ItemKindService, "svc-1", 9000)
		failed.PaymentStatus = model.PaymentStatusFailed

		for _, p := range []*model.PurchaseIntent{sub, order, failed} {
			if err := repo.Save(ctx, nil, p); err != nil {
				t.Fatalf("Save: %v", err)
			}
		}

		if n, _ := repo.CountActiveSubscriptions(ctx, nil, now); n != 1 {
			t.Errorf("CountActiveSubscriptions = %d, want 1", n)
		}
		if sum, _ := repo.SumCompletedAmount(ctx, nil); sum != 20000 {
			t.Errorf("SumCompletedAmount = %d, want 20000", sum)
		}
		byF, _ := repo.CountByFulfillment(ctx, nil)
		if byF[model.FulfillmentProcessing] != 1 {
			t.Errorf("CountByFulfillment = %v", byF)
		}
	})
}
