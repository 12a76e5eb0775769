package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/adapter"
)

// dispatch hands a notification to the sink and swallows any error.
// Notifications are a best-effort side channel; they never fail the
// operation that produced them.
func dispatch(ctx context.Context, sink adapter.NotificationSink, log *zerolog.Logger, n *model.Notification) {
	if sink == nil || n == nil {
		return
	}
	if err := sink.Notify(ctx, n); err != nil {
		log.Warn().Err(err).Str("kind", string(n.Kind)).Str("user_id", n.UserID).Msg("notification dispatch failed")
	}
}

func newNotification(p *model.PurchaseIntent, kind model.NotificationKind, title, message string) *model.Notification {
	return &model.Notification{
		ID:       uuid.NewString(),
		UserID:   p.UserID,
		Kind:     kind,
		Title:    title,
		Message:  message,
		IntentID: p.ID,
		Metadata: map[string]string{
			"item_kind": string(p.ItemKind),
			"item_name": p.ItemName,
			"amount":    fmt.Sprintf("%s %d", p.Currency, p.Amount),
		},
		CreatedAt: time.Now(),
	}
}

func notePaymentCompleted(p *model.PurchaseIntent) *model.Notification {
	return newNotification(p, model.NotifyPaymentCompleted, "Payment Successful",
		fmt.Sprintf("Your payment of %s %d for %s has been confirmed.", p.Currency, p.Amount, p.ItemName))
}

func notePaymentFailed(p *model.PurchaseIntent) *model.Notification {
	return newNotification(p, model.NotifyPaymentFailed, "Payment Failed",
		fmt.Sprintf("Your payment for %s was not completed. No money was deducted from your account.", p.ItemName))
}

func notePaymentVerified(p *model.PurchaseIntent) *model.Notification {
	return newNotification(p, model.NotifyPaymentVerified, "Payment Verified",
		fmt.Sprintf("Your manual payment of %s %d for %s has been verified by our team.", p.Currency, p.Amount, p.ItemName))
}

func noteCredentialsAdded(p *model.PurchaseIntent) *model.Notification {
	return newNotification(p, model.NotifyCredentialsAdded, "Access Details Ready",
		fmt.Sprintf("Access credentials for %s have been added to your order.", p.ItemName))
}

func noteFulfillmentChange(p *model.PurchaseIntent, status model.FulfillmentStatus) *model.Notification {
	var title, message string
	switch status {
	case model.FulfillmentProcessing:
		title = "Order Being Processed"
		message = fmt.Sprintf("Your order for %s is now being processed.", p.ItemName)
	case model.FulfillmentActive:
		title = "Order Activated"
		message = fmt.Sprintf("Your %s order is now active. Check your order details for access credentials.", p.ItemName)
	case model.FulfillmentDelivered:
		title = "Order Delivered"
		message = fmt.Sprintf("Your order for %s has been delivered.", p.ItemName)
	case model.FulfillmentCancelled:
		title = "Order Cancelled"
		message = fmt.Sprintf("Your order for %s has been cancelled.", p.ItemName)
		if p.AdminNote != "" {
			message += " Note: " + p.AdminNote
		}
	default:
		return nil
	}
	return newNotification(p, model.NotifyOrderStatusChange, title, message)
}
