package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"inet-marketplace/internal/infra/metrics"
	"inet-marketplace/internal/usecase"
)

// ReconcileWorker periodically sweeps stale pending USSD intents and
// re-runs the status poll against the provider. This covers customers
// who stopped polling after confirming the USSD prompt and processes
// that crashed mid-completion.
type ReconcileWorker struct {
	interval   time.Duration
	staleAfter time.Duration
	batchSize  int
	uc         usecase.ReconcileUseCase
	log        *zerolog.Logger
}

func NewReconcileWorker(interval, staleAfter time.Duration, batchSize int, uc usecase.ReconcileUseCase, logger *zerolog.Logger) *ReconcileWorker {
	wlog := logger.With().Str("component", "ReconcileWorker").Logger()
	return &ReconcileWorker{
		interval:   interval,
		staleAfter: staleAfter,
		batchSize:  batchSize,
		uc:         uc,
		log:        &wlog,
	}
}

func (w *ReconcileWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("stale_after", w.staleAfter).Msg("Starting reconcile worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping reconcile worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ReconcileWorker) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	settled, err := w.uc.ReconcileStale(ctx, cutoff, w.batchSize)
	if err != nil {
		metrics.IncReconcileIntent("error")
		w.log.Error().Err(err).Msg("reconcile sweep failed")
		return
	}
	metrics.SetReconcileLastRun(float64(time.Now().Unix()))
	if settled > 0 {
		w.log.Info().Int("settled", settled).Msg("stale intents reconciled")
	}
}
