package subscriptionsvc

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	idempmem "github.com/arvenlabs/billing-svc/internal/dal/repositories/idempotency/memory"
	"github.com/arvenlabs/billing-svc/internal/dal/uow"
	"github.com/arvenlabs/billing-svc/internal/payment"
	"github.com/arvenlabs/billing-svc/internal/service/models/plan"
	"github.com/arvenlabs/billing-svc/internal/service/models/subscription"
)

func newTestService(t *testing.T) (*SubscriptionService, *payment.MockGateway) {
	t.Helper()

	gateway := payment.NewMockGateway()
	svc := MustNewSubscriptionService(
		WithUOWFactory(uow.NewMemoryFactory()),
		WithGateway(gateway),
		WithIdempotencyStore(idempmem.NewMemoryIdempotencyStore()),
	)

	return svc, gateway
}

func createModel() subscription.CreateSubscriptionModel {
	return subscription.CreateSubscriptionModel{
		CustomerID:      "cust-1",
		PlanID:          "standard-maintenance",
		BillingCycle:    subscription.BillingCycleMonthly,
		PaymentMethodID: "pm-1",
		AutoRenew:       true,
	}
}

func TestCreateSubscription(t *testing.T) {
	svc, gateway := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSubscription(ctx, createModel())
	require.NoError(t, err)

	assert.Equal(t, subscription.StatusActive, created.Status)
	assert.Equal(t, "Mantenimiento Estándar", created.PlanName)
	assert.Equal(t, int64(9900), created.PriceCents)
	assert.Nil(t, created.TrialEndDate)

	// next billing one calendar month from start
	assert.Equal(t, created.StartDate.AddDate(0, 1, 0), created.NextBillingDate)

	// recurring payment registered with the provider
	require.NotEmpty(t, created.ProviderSubscriptionID)
	assert.Equal(t, "standard-maintenance", gateway.Recurring[created.ProviderSubscriptionID])
}

func TestCreateSubscriptionYearlyWithCoupon(t *testing.T) {
	svc, _ := newTestService(t)

	model := createModel()
	model.BillingCycle = subscription.BillingCycleYearly
	model.CouponCode = "FIRST10"

	created, err := svc.CreateSubscription(context.Background(), model)
	require.NoError(t, err)

	// 9900*12*0.9 = 106920, minus 10% coupon
	assert.Equal(t, int64(96228), created.PriceCents)
	assert.Equal(t, created.StartDate.AddDate(1, 0, 0), created.NextBillingDate)
}

func TestCreateSubscriptionWithTrial(t *testing.T) {
	svc, gateway := newTestService(t)

	model := createModel()
	model.TrialDays = 14

	created, err := svc.CreateSubscription(context.Background(), model)
	require.NoError(t, err)

	assert.Equal(t, subscription.StatusActive, created.Status)
	require.NotNil(t, created.TrialEndDate)
	assert.Equal(t, created.StartDate.AddDate(0, 0, 14), *created.TrialEndDate)

	// first charge one billing cycle after the trial ends, not at trial end
	assert.Equal(t, subscription.BillingCycleMonthly.Advance(*created.TrialEndDate), created.NextBillingDate)
	assert.True(t, created.InTrial(created.StartDate.Add(time.Hour)))

	// no provider call until the trial converts
	assert.Empty(t, created.ProviderSubscriptionID)
	assert.Empty(t, gateway.Recurring)
}

func TestCreateSubscriptionUnknownPlan(t *testing.T) {
	svc, _ := newTestService(t)

	model := createModel()
	model.PlanID = "enterprise-maintenance"

	_, err := svc.CreateSubscription(context.Background(), model)
	require.ErrorIs(t, err, plan.ErrPlanNotFound)
}

func TestCreateSubscriptionAbortsOnProviderFailure(t *testing.T) {
	svc, gateway := newTestService(t)
	ctx := context.Background()

	gateway.CreateRecurringPaymentErr = &payment.ProviderError{Code: "card_declined", Message: "declined"}

	_, err := svc.CreateSubscription(ctx, createModel())
	require.Error(t, err)

	// nothing persisted
	subs, err := svc.GetSubscriptions(ctx, &subscription.QuerySubscriptionsModel{})
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestUpdateSubscriptionPlanChangeReprices(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSubscription(ctx, createModel())
	require.NoError(t, err)

	newPlan := "premium-maintenance"
	updated, err := svc.UpdateSubscription(ctx, created.ID, subscription.UpdateSubscriptionModel{PlanID: &newPlan})
	require.NoError(t, err)

	assert.Equal(t, "premium-maintenance", updated.PlanID)
	assert.Equal(t, "Mantenimiento Premium", updated.PlanName)
	assert.Equal(t, int64(19900), updated.PriceCents)
	// plan change alone keeps the billing anchor
	assert.Equal(t, created.NextBillingDate, updated.NextBillingDate)
}

func TestUpdateSubscriptionCycleChangeReanchors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSubscription(ctx, createModel())
	require.NoError(t, err)

	yearly := subscription.BillingCycleYearly
	before := time.Now()
	updated, err := svc.UpdateSubscription(ctx, created.ID, subscription.UpdateSubscriptionModel{BillingCycle: &yearly})
	require.NoError(t, err)

	assert.Equal(t, subscription.BillingCycleYearly, updated.BillingCycle)
	assert.Equal(t, int64(106920), updated.PriceCents)
	assert.False(t, updated.NextBillingDate.Before(before.AddDate(1, 0, 0)))
}

func TestCancelSubscriptionImmediate(t *testing.T) {
	svc, gateway := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSubscription(ctx, createModel())
	require.NoError(t, err)

	cancelled, err := svc.CancelSubscription(ctx, created.ID, "demasiado caro", false)
	require.NoError(t, err)

	assert.Equal(t, subscription.StatusCancelled, cancelled.Status)
	assert.Equal(t, "demasiado caro", cancelled.CancelReason)
	assert.False(t, cancelled.AutoRenew)
	require.NotNil(t, cancelled.CancelledAt)
	require.NotNil(t, cancelled.EndDate)
	assert.Equal(t, *cancelled.CancelledAt, *cancelled.EndDate)

	// provider-side recurring payment stopped
	assert.Empty(t, gateway.Recurring)
}

func TestCancelSubscriptionAtPeriodEnd(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSubscription(ctx, createModel())
	require.NoError(t, err)

	cancelled, err := svc.CancelSubscription(ctx, created.ID, "", true)
	require.NoError(t, err)

	assert.Equal(t, subscription.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.EndDate)
	// access runs until the already-paid period ends
	assert.Equal(t, created.NextBillingDate, *cancelled.EndDate)
}

func TestCancelSubscriptionTwiceRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSubscription(ctx, createModel())
	require.NoError(t, err)

	_, err = svc.CancelSubscription(ctx, created.ID, "", false)
	require.NoError(t, err)

	_, err = svc.CancelSubscription(ctx, created.ID, "", false)
	var invalid *subscription.ErrInvalidTransition
	require.ErrorAs(t, err, &invalid)
}

func TestPauseAndResume(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSubscription(ctx, createModel())
	require.NoError(t, err)

	paused, err := svc.PauseSubscription(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusPaused, paused.Status)
	require.NotNil(t, paused.PausedAt)

	// pausing twice is not allowed
	_, err = svc.PauseSubscription(ctx, created.ID, nil)
	require.Error(t, err)

	before := time.Now()
	resumed, err := svc.ResumeSubscription(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, resumed.Status)
	assert.Nil(t, resumed.PausedAt)
	// billing re-anchored from the resume time
	assert.False(t, resumed.NextBillingDate.Before(before.AddDate(0, 1, 0)))
}

func TestPauseWithResumeBillingDate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSubscription(ctx, createModel())
	require.NoError(t, err)

	resumeOn := time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC)
	paused, err := svc.PauseSubscription(ctx, created.ID, &resumeOn)
	require.NoError(t, err)

	assert.Equal(t, subscription.StatusPaused, paused.Status)
	assert.Equal(t, resumeOn, paused.NextBillingDate)
}

func TestProcessSubscriptionBilling(t *testing.T) {
	svc, gateway := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSubscription(ctx, createModel())
	require.NoError(t, err)
	firstBillingDate := created.NextBillingDate

	billed, err := svc.ProcessSubscriptionBilling(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, subscription.StatusActive, billed.Status)
	assert.Equal(t, firstBillingDate.AddDate(0, 1, 0), billed.NextBillingDate)

	var charged int64
	for _, cents := range gateway.Charges {
		charged += cents
	}
	assert.Equal(t, int64(9900), charged)
}

func TestProcessSubscriptionBillingFailureExpires(t *testing.T) {
	svc, gateway := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSubscription(ctx, createModel())
	require.NoError(t, err)

	gateway.ProcessPaymentErr = &payment.ProviderError{Code: "card_declined", Message: "declined"}

	_, err = svc.ProcessSubscriptionBilling(ctx, created.ID)
	require.Error(t, err)

	got, err := svc.GetSubscription(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusExpired, got.Status)
	require.NotNil(t, got.EndDate)
}

func TestProcessSubscriptionBillingRequiresActive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSubscription(ctx, createModel())
	require.NoError(t, err)

	_, err = svc.PauseSubscription(ctx, created.ID, nil)
	require.NoError(t, err)

	_, err = svc.ProcessSubscriptionBilling(ctx, created.ID)
	require.ErrorIs(t, err, subscription.ErrNotActive)
}

func TestProcessSubscriptionBillingIdempotent(t *testing.T) {
	svc, gateway := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSubscription(ctx, createModel())
	require.NoError(t, err)

	// simulate a crashed attempt that still holds the period lock: the
	// billing date has not advanced, so the period key is unchanged
	locked, err := svc.idempotency.TryLock(ctx, billingLockScope, created.PeriodKey())
	require.NoError(t, err)
	require.True(t, locked)

	_, err = svc.ProcessSubscriptionBilling(ctx, created.ID)
	require.ErrorIs(t, err, subscription.ErrBillingInProgress)
	assert.Empty(t, gateway.Charges)

	// releasing the stale lock lets billing proceed
	require.NoError(t, svc.idempotency.Release(ctx, billingLockScope, created.PeriodKey()))

	billed, err := svc.ProcessSubscriptionBilling(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.NextBillingDate.AddDate(0, 1, 0), billed.NextBillingDate)
}

func TestMarkProviderCancelled(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSubscription(ctx, createModel())
	require.NoError(t, err)
	require.NotEmpty(t, created.ProviderSubscriptionID)

	require.NoError(t, svc.MarkProviderCancelled(ctx, created.ProviderSubscriptionID))

	got, err := svc.GetSubscription(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusCancelled, got.Status)
	assert.False(t, got.AutoRenew)

	// applying the same webhook again is a no-op
	require.NoError(t, svc.MarkProviderCancelled(ctx, created.ProviderSubscriptionID))

	err = svc.MarkProviderCancelled(ctx, "sub_unknown")
	require.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
}

func TestGetSubscriptionStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateSubscription(ctx, createModel())
	require.NoError(t, err)

	yearlyModel := createModel()
	yearlyModel.CustomerID = "cust-2"
	yearlyModel.BillingCycle = subscription.BillingCycleYearly
	_, err = svc.CreateSubscription(ctx, yearlyModel)
	require.NoError(t, err)

	trialModel := createModel()
	trialModel.CustomerID = "cust-3"
	trialModel.PlanID = "basic-maintenance"
	trialModel.TrialDays = 14
	_, err = svc.CreateSubscription(ctx, trialModel)
	require.NoError(t, err)

	paused, err := svc.CreateSubscription(ctx, createModel())
	require.NoError(t, err)
	_, err = svc.PauseSubscription(ctx, paused.ID, nil)
	require.NoError(t, err)

	stats, err := svc.GetSubscriptionStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalSubscriptions)
	assert.Equal(t, 3, stats.ByStatus[subscription.StatusActive])
	assert.Equal(t, 1, stats.ByStatus[subscription.StatusPaused])
	assert.Equal(t, 3, stats.ByPlan["standard-maintenance"])
	assert.Equal(t, 1, stats.ByPlan["basic-maintenance"])
	assert.Equal(t, 1, stats.InTrial)

	// active: one monthly standard (9900), one yearly standard (106920/12 =
	// 8910), one basic trial (4900); the paused one does not count
	assert.Equal(t, int64(9900+8910+4900), stats.MonthlyRecurringRevenueCents)
}

func TestGetSubscriptionNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetSubscription(context.Background(), uuid.New())
	require.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
}
