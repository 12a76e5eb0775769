package model

import "time"

type NotificationKind string

const (
	NotifyPaymentCompleted  NotificationKind = "payment_completed"
	NotifyPaymentFailed     NotificationKind = "payment_failed"
	NotifyPaymentVerified   NotificationKind = "payment_verified"
	NotifyOrderStatusChange NotificationKind = "order_status_change"
	NotifyCredentialsAdded  NotificationKind = "credentials_added"
)

// Notification is one entry in a user's in-app feed. Writing it is
// best-effort: a lost notification never fails the purchase flow.
type Notification struct {
	ID        string
	UserID    string
	Kind      NotificationKind
	Title     string
	Message   string
	IntentID  string // related purchase intent, if any
	Metadata  map[string]string
	CreatedAt time.Time
}
