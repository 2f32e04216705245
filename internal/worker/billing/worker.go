package billing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/arvenlabs/billing-svc/internal/service/models/subscription"
)

type subscriptionService interface {
	GetSubscriptions(ctx context.Context, filter *subscription.QuerySubscriptionsModel) ([]subscription.Subscription, error)
	ProcessSubscriptionBilling(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error)
}

// Worker periodically charges active auto-renewing subscriptions whose
// billing date has arrived.
type Worker struct {
	service       subscriptionService
	sweepInterval time.Duration
	batchSize     int
	concurrency   int
	stopCh        chan struct{}
}

// NewWorker creates a new billing worker.
func NewWorker(service subscriptionService) *Worker {
	sweepIntervalSeconds := viper.GetInt("billing.sweep_interval_seconds")
	if sweepIntervalSeconds == 0 {
		sweepIntervalSeconds = 60
	}

	batchSize := viper.GetInt("billing.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	concurrency := viper.GetInt("billing.concurrency")
	if concurrency == 0 {
		concurrency = 4
	}

	return &Worker{
		service:       service,
		sweepInterval: time.Duration(sweepIntervalSeconds) * time.Second,
		batchSize:     batchSize,
		concurrency:   concurrency,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the periodic billing sweep.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	slog.Info("Billing worker started", "sweep_interval", w.sweepInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Billing worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Billing worker stopped")

			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// Sweep charges every active auto-renewing subscription that is due. A
// failed charge expires that subscription inside the service; the sweep
// carries on with the rest.
func (w *Worker) Sweep(ctx context.Context) {
	now := time.Now()
	due, err := w.service.GetSubscriptions(ctx, &subscription.QuerySubscriptionsModel{
		Statuses:      []subscription.Status{subscription.StatusActive},
		DueBefore:     &now,
		AutoRenewOnly: true,
		Limit:         w.batchSize,
	})
	if err != nil {
		slog.Error("Failed to query due subscriptions", "error", err)

		return
	}

	if len(due) == 0 {
		return
	}

	slog.Info("Processing due subscriptions", "count", len(due))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, sub := range due {
		sub := sub
		g.Go(func() error {
			if _, err := w.service.ProcessSubscriptionBilling(gctx, sub.ID); err != nil {
				if !errors.Is(err, subscription.ErrBillingInProgress) {
					slog.Warn("Failed to bill subscription", "subscription_id", sub.ID, "error", err)
				}
			}

			return nil
		})
	}
	_ = g.Wait()
}
