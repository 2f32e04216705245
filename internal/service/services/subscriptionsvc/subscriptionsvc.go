package subscriptionsvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arvenlabs/billing-svc/internal/dal/interfaces/iidempotency"
	"github.com/arvenlabs/billing-svc/internal/dal/uow"
	"github.com/arvenlabs/billing-svc/internal/payment"
	"github.com/arvenlabs/billing-svc/internal/service/models/event"
	"github.com/arvenlabs/billing-svc/internal/service/models/plan"
	"github.com/arvenlabs/billing-svc/internal/service/models/subscription"
	"github.com/arvenlabs/billing-svc/pkg/kmutex"
)

const billingLockScope = "billing"

const defaultProviderTimeout = 30 * time.Second

// SubscriptionService owns subscription records, their lifecycle and
// recurring billing, including the periodic charge sweep triggered by the
// billing worker.
type SubscriptionService struct {
	factory         uow.Factory
	gateway         payment.Gateway
	idempotency     iidempotency.IIdempotencyStore
	locks           *kmutex.KeyedMutex
	providerTimeout time.Duration
}

// option is a function that configures the SubscriptionService.
type option func(*SubscriptionService)

// MustNewSubscriptionService creates a new SubscriptionService.
func MustNewSubscriptionService(opts ...option) *SubscriptionService {
	s := &SubscriptionService{
		locks:           kmutex.New(),
		providerTimeout: defaultProviderTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.factory == nil {
		panic("subscriptionsvc: unit of work factory is required")
	}
	if s.gateway == nil {
		panic("subscriptionsvc: payment gateway is required")
	}
	if s.idempotency == nil {
		panic("subscriptionsvc: idempotency store is required")
	}

	return s
}

// WithUOWFactory sets the unit of work factory for the SubscriptionService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUOWFactory(factory uow.Factory) option {
	return func(s *SubscriptionService) {
		s.factory = factory
	}
}

// WithGateway sets the payment gateway for the SubscriptionService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithGateway(gateway payment.Gateway) option {
	return func(s *SubscriptionService) {
		s.gateway = gateway
	}
}

// WithIdempotencyStore sets the billing idempotency store.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithIdempotencyStore(store iidempotency.IIdempotencyStore) option {
	return func(s *SubscriptionService) {
		s.idempotency = store
	}
}

// WithProviderTimeout sets the timeout applied to payment-provider calls.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProviderTimeout(timeout time.Duration) option {
	return func(s *SubscriptionService) {
		s.providerTimeout = timeout
	}
}

// CreateSubscription opens a subscription on a maintenance plan. Without a
// trial the recurring payment is set up with the provider first and the
// subscription is only persisted once the provider accepted it.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, model subscription.CreateSubscriptionModel) (*subscription.Subscription, error) {
	p, err := plan.ByID(model.PlanID)
	if err != nil {
		return nil, err
	}

	cycle := model.BillingCycle
	if cycle == "" {
		cycle = subscription.BillingCycleMonthly
	}
	cur := model.Currency
	if cur == "" {
		cur = p.Currency
	}

	price := subscription.DiscountedPrice(subscription.CyclePrice(p.PriceMonthlyCents, cycle), model.CouponCode)

	now := time.Now()
	sub := subscription.Subscription{
		ID:              uuid.New(),
		CustomerID:      model.CustomerID,
		PlanID:          p.ID,
		PlanName:        p.Name,
		BillingCycle:    cycle,
		PriceCents:      price,
		Currency:        cur,
		Status:          subscription.StatusActive,
		AutoRenew:       model.AutoRenew,
		PaymentMethodID: model.PaymentMethodID,
		CouponCode:      model.CouponCode,
		StartDate:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if model.TrialDays > 0 {
		trialEnd := now.AddDate(0, 0, model.TrialDays)
		sub.TrialEndDate = &trialEnd
		sub.NextBillingDate = cycle.Advance(trialEnd)
	} else {
		sub.NextBillingDate = cycle.Advance(now)

		callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
		defer cancel()

		result, err := s.gateway.CreateRecurringPayment(callCtx, payment.RecurringRequest{
			CustomerID:      sub.CustomerID,
			PaymentMethodID: sub.PaymentMethodID,
			PlanID:          sub.PlanID,
			PriceCents:      sub.PriceCents,
			Currency:        sub.Currency,
			Yearly:          cycle == subscription.BillingCycleYearly,
			Metadata:        map[string]string{"subscription_id": sub.ID.String()},
		})
		if err != nil {
			return nil, fmt.Errorf("create recurring payment: %w", err)
		}
		sub.ProviderSubscriptionID = result.RecurringID
	}

	work := s.factory.New()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback() }()

	inserted, err := work.Subscriptions().Insert(ctx, sub)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, work, event.SubscriptionCreated, inserted)

	if err := work.Commit(); err != nil {
		return nil, err
	}

	return &inserted, nil
}

// UpdateSubscription changes plan, billing cycle, payment method or
// auto-renewal. A plan or cycle change recomputes the price; a cycle change
// also re-anchors the next billing date from now.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, id uuid.UUID, model subscription.UpdateSubscriptionModel) (*subscription.Subscription, error) {
	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	sub, err := s.getSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	repriced := false
	if model.PlanID != nil && *model.PlanID != sub.PlanID {
		p, err := plan.ByID(*model.PlanID)
		if err != nil {
			return nil, err
		}
		sub.PlanID = p.ID
		sub.PlanName = p.Name
		repriced = true
	}
	if model.BillingCycle != nil && *model.BillingCycle != sub.BillingCycle {
		sub.BillingCycle = *model.BillingCycle
		sub.NextBillingDate = sub.BillingCycle.Advance(time.Now())
		repriced = true
	}
	if model.PaymentMethodID != nil {
		sub.PaymentMethodID = *model.PaymentMethodID
	}
	if model.AutoRenew != nil {
		sub.AutoRenew = *model.AutoRenew
	}

	if repriced {
		p, err := plan.ByID(sub.PlanID)
		if err != nil {
			return nil, err
		}
		sub.PriceCents = subscription.DiscountedPrice(
			subscription.CyclePrice(p.PriceMonthlyCents, sub.BillingCycle), sub.CouponCode)
	}
	sub.UpdatedAt = time.Now()

	if err := s.saveSubscription(ctx, sub, event.SubscriptionUpdated); err != nil {
		return nil, err
	}

	return sub, nil
}

// CancelSubscription cancels a subscription, either at the end of the paid
// period or immediately. The provider-side recurring payment is stopped
// right away in both modes.
func (s *SubscriptionService) CancelSubscription(ctx context.Context, id uuid.UUID, reason string, atPeriodEnd bool) (*subscription.Subscription, error) {
	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	sub, err := s.getSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	newStatus, err := sub.Status.Transition(subscription.StatusCancelled)
	if err != nil {
		return nil, err
	}

	if sub.ProviderSubscriptionID != "" {
		callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
		defer cancel()

		if err := s.gateway.CancelRecurringPayment(callCtx, sub.ProviderSubscriptionID); err != nil {
			return nil, fmt.Errorf("cancel recurring payment: %w", err)
		}
	}

	now := time.Now()
	sub.Status = newStatus
	sub.CancelledAt = &now
	sub.CancelReason = reason
	sub.AutoRenew = false
	if atPeriodEnd {
		// Access runs until the period the customer already paid for ends.
		periodEnd := sub.NextBillingDate
		sub.EndDate = &periodEnd
	} else {
		sub.EndDate = &now
	}
	sub.UpdatedAt = now

	if err := s.saveSubscription(ctx, sub, event.SubscriptionCancelled); err != nil {
		return nil, err
	}

	return sub, nil
}

// PauseSubscription suspends billing on an active subscription. A non-nil
// resumeBillingDate replaces the next billing date, otherwise the paused
// schedule is kept as is (Resume re-anchors it anyway).
func (s *SubscriptionService) PauseSubscription(ctx context.Context, id uuid.UUID, resumeBillingDate *time.Time) (*subscription.Subscription, error) {
	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	sub, err := s.getSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	newStatus, err := sub.Status.Transition(subscription.StatusPaused)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sub.Status = newStatus
	sub.PausedAt = &now
	if resumeBillingDate != nil {
		sub.NextBillingDate = *resumeBillingDate
	}
	sub.UpdatedAt = now

	if err := s.saveSubscription(ctx, sub, event.SubscriptionPaused); err != nil {
		return nil, err
	}

	return sub, nil
}

// ResumeSubscription reactivates a paused subscription. The next billing
// date is re-anchored from the resume time, not from where the paused
// schedule left off.
func (s *SubscriptionService) ResumeSubscription(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	sub, err := s.getSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	newStatus, err := sub.Status.Transition(subscription.StatusActive)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sub.Status = newStatus
	sub.PausedAt = nil
	sub.NextBillingDate = sub.BillingCycle.Advance(now)
	sub.UpdatedAt = now

	if err := s.saveSubscription(ctx, sub, event.SubscriptionResumed); err != nil {
		return nil, err
	}

	return sub, nil
}

// ProcessSubscriptionBilling charges one billing period. At most one attempt
// runs per subscription per period: concurrent or repeated attempts for the
// same period get ErrBillingInProgress. A declined charge expires the
// subscription immediately.
func (s *SubscriptionService) ProcessSubscriptionBilling(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	sub, err := s.getSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	if sub.Status != subscription.StatusActive {
		return nil, subscription.ErrNotActive
	}

	locked, err := s.idempotency.TryLock(ctx, billingLockScope, sub.PeriodKey())
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, subscription.ErrBillingInProgress
	}

	callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	result, chargeErr := s.gateway.ProcessPayment(callCtx, payment.ChargeRequest{
		AmountCents:     sub.PriceCents,
		Currency:        sub.Currency,
		CustomerID:      sub.CustomerID,
		PaymentMethodID: sub.PaymentMethodID,
		Description:     "Suscripción " + sub.PlanName,
		Metadata: map[string]string{
			"subscription_id": sub.ID.String(),
			"period":          sub.NextBillingDate.UTC().Format(time.RFC3339),
		},
	})

	now := time.Now()
	if chargeErr != nil || result.Status != payment.StatusSucceeded {
		sub.Status = subscription.StatusExpired
		sub.EndDate = &now
		sub.UpdatedAt = now

		if err := s.saveSubscription(ctx, sub, event.SubscriptionExpired); err != nil {
			return nil, err
		}
		if chargeErr == nil {
			chargeErr = fmt.Errorf("subscription charge: %w", &payment.ProviderError{
				Message: fmt.Sprintf("charge finished with status %q", result.Status),
			})
		}

		return nil, chargeErr
	}

	sub.NextBillingDate = sub.BillingCycle.Advance(sub.NextBillingDate)
	sub.UpdatedAt = now

	if err := s.saveSubscription(ctx, sub, event.SubscriptionBilled); err != nil {
		return nil, err
	}

	return sub, nil
}

// MarkProviderCancelled records a cancellation initiated on the provider's
// side, identified by the provider's recurring payment id. The provider
// already stopped charging, so no gateway call is made.
func (s *SubscriptionService) MarkProviderCancelled(ctx context.Context, providerSubscriptionID string) error {
	work := s.factory.New()

	sub, err := work.Subscriptions().GetByProviderID(ctx, providerSubscriptionID)
	if err != nil {
		return err
	}

	s.locks.Lock(sub.ID.String())
	defer s.locks.Unlock(sub.ID.String())

	if sub.Status.IsTerminal() {
		return nil
	}

	now := time.Now()
	sub.Status = subscription.StatusCancelled
	sub.CancelledAt = &now
	sub.CancelReason = "cancelled by payment provider"
	sub.AutoRenew = false
	sub.EndDate = &now
	sub.UpdatedAt = now

	return s.saveSubscription(ctx, sub, event.SubscriptionCancelled)
}

// GetSubscriptions retrieves subscriptions based on filter.
func (s *SubscriptionService) GetSubscriptions(ctx context.Context, filter *subscription.QuerySubscriptionsModel) ([]subscription.Subscription, error) {
	work := s.factory.New()

	return work.Subscriptions().Query(ctx, filter)
}

// GetSubscription retrieves one subscription by id.
func (s *SubscriptionService) GetSubscription(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	return s.getSubscription(ctx, id)
}

// GetSubscriptionStats aggregates counts, plan distribution and monthly
// recurring revenue across all subscriptions.
func (s *SubscriptionService) GetSubscriptionStats(ctx context.Context) (*subscription.Stats, error) {
	work := s.factory.New()

	subs, err := work.Subscriptions().Query(ctx, &subscription.QuerySubscriptionsModel{})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	stats := subscription.Stats{
		TotalSubscriptions: len(subs),
		ByStatus:           map[subscription.Status]int{},
		ByPlan:             map[string]int{},
	}
	for i := range subs {
		sub := &subs[i]
		stats.ByStatus[sub.Status]++
		stats.ByPlan[sub.PlanID]++
		if sub.Status != subscription.StatusActive {
			continue
		}
		if sub.InTrial(now) {
			stats.InTrial++
		}
		if sub.BillingCycle == subscription.BillingCycleYearly {
			stats.MonthlyRecurringRevenueCents += sub.PriceCents / 12
		} else {
			stats.MonthlyRecurringRevenueCents += sub.PriceCents
		}
	}

	return &stats, nil
}

func (s *SubscriptionService) getSubscription(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	work := s.factory.New()

	return work.Subscriptions().GetByID(ctx, id)
}

// saveSubscription persists the subscription and its event in one
// transaction.
func (s *SubscriptionService) saveSubscription(ctx context.Context, sub *subscription.Subscription, eventType string) error {
	work := s.factory.New()
	if err := work.Begin(ctx); err != nil {
		return err
	}
	defer func() { _ = work.Rollback() }()

	if err := work.Subscriptions().Update(ctx, *sub); err != nil {
		return err
	}
	if eventType != "" {
		s.publishEvent(ctx, work, eventType, sub)
	}

	return work.Commit()
}

func (s *SubscriptionService) publishEvent(ctx context.Context, work uow.UnitOfWork, eventType string, payload any) {
	msg, err := event.NewMessage(eventType, payload)
	if err != nil {
		slog.Warn("Failed to build event", "type", eventType, "error", err)

		return
	}
	if err := work.Outbox().Insert(ctx, msg); err != nil {
		slog.Warn("Failed to queue event", "type", eventType, "error", err)
	}
}
