package notify

import (
	"context"

	"github.com/rs/zerolog"

	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/adapter"
	"inet-marketplace/internal/domain/ports/repository"
)

var _ adapter.NotificationSink = (*Dispatcher)(nil)

// Dispatcher persists notifications for the in-app feed and mirrors
// selected ones to the admin alert channel. Delivery is asynchronous
// through a bounded queue; when the queue is full the notification is
// dropped and counted, never blocking the purchase flow that produced it.
type Dispatcher struct {
	repo  repository.NotificationRepository
	alert AdminAlerter
	log   *zerolog.Logger

	queue chan *model.Notification
	done  chan struct{}
}

// AdminAlerter forwards a notification to the operators' channel.
// Nil disables admin alerts.
type AdminAlerter interface {
	Alert(ctx context.Context, n *model.Notification) error
}

func NewDispatcher(repo repository.NotificationRepository, alert AdminAlerter, buffer int, logger *zerolog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	d := &Dispatcher{
		repo:  repo,
		alert: alert,
		log:   logger,
		queue: make(chan *model.Notification, buffer),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify enqueues without blocking. A full queue drops the notification.
func (d *Dispatcher) Notify(_ context.Context, n *model.Notification) error {
	select {
	case d.queue <- n:
		return nil
	default:
		d.log.Warn().Str("kind", string(n.Kind)).Str("user_id", n.UserID).Msg("notification queue full, dropping")
		return nil
	}
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for n := range d.queue {
		ctx := context.Background()
		if err := d.repo.Save(ctx, repository.NoTX, n); err != nil {
			d.log.Warn().Err(err).Str("kind", string(n.Kind)).Msg("persist notification failed")
		}
		if d.alert != nil && alertWorthy(n.Kind) {
			if err := d.alert.Alert(ctx, n); err != nil {
				d.log.Warn().Err(err).Str("kind", string(n.Kind)).Msg("admin alert failed")
			}
		}
	}
}

// alertWorthy picks the kinds operators want to see in real time.
func alertWorthy(kind model.NotificationKind) bool {
	switch kind {
	case model.NotifyPaymentCompleted, model.NotifyPaymentVerified:
		return true
	default:
		return false
	}
}
