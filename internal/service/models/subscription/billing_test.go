package subscription

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCyclePrice(t *testing.T) {
	tests := []struct {
		name         string
		monthlyCents int64
		cycle        BillingCycle
		want         int64
	}{
		{"monthly_passes_through", 9900, BillingCycleMonthly, 9900},
		{"yearly_twelve_months_minus_ten_percent", 9900, BillingCycleYearly, 106920},
		{"yearly_basic", 4900, BillingCycleYearly, 52920},
		{"yearly_premium", 19900, BillingCycleYearly, 214920},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CyclePrice(tt.monthlyCents, tt.cycle))
		})
	}
}

func TestDiscountedPrice(t *testing.T) {
	tests := []struct {
		name   string
		price  int64
		coupon string
		want   int64
	}{
		{"no_coupon", 9900, "", 9900},
		{"first10", 9900, "FIRST10", 8910},
		{"save20", 10000, "SAVE20", 8000},
		{"welcome50", 9900, "WELCOME50", 4950},
		{"unknown_coupon_ignored", 9900, "BOGUS", 9900},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DiscountedPrice(tt.price, tt.coupon))
		})
	}
}

func TestAdvance(t *testing.T) {
	from := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), BillingCycleMonthly.Advance(from))
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), BillingCycleYearly.Advance(from))

	mid := time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 4, 15, 9, 30, 0, 0, time.UTC), BillingCycleMonthly.Advance(mid))
}

func TestParseBillingCycle(t *testing.T) {
	got, err := ParseBillingCycle("yearly")
	require.NoError(t, err)
	assert.Equal(t, BillingCycleYearly, got)

	_, err = ParseBillingCycle("weekly")
	require.ErrorIs(t, err, ErrInvalidBillingCycle)
}

func TestPeriodKey(t *testing.T) {
	id := uuid.New()
	next := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	sub := Subscription{ID: id, NextBillingDate: next}

	assert.Equal(t, id.String()+":2025-06-01T00:00:00Z", sub.PeriodKey())

	sub.NextBillingDate = BillingCycleMonthly.Advance(next)
	assert.Equal(t, id.String()+":2025-07-01T00:00:00Z", sub.PeriodKey())
}

func TestSubscriptionStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"active_to_paused", StatusActive, StatusPaused, true},
		{"active_to_cancelled", StatusActive, StatusCancelled, true},
		{"active_to_expired", StatusActive, StatusExpired, true},
		{"paused_to_active", StatusPaused, StatusActive, true},
		{"paused_to_cancelled", StatusPaused, StatusCancelled, true},
		{"paused_to_expired", StatusPaused, StatusExpired, false},
		{"cancelled_is_terminal", StatusCancelled, StatusActive, false},
		{"expired_is_terminal", StatusExpired, StatusActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.from.Transition(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got)

				return
			}

			var invalid *ErrInvalidTransition
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.from, got)
		})
	}
}

func TestInTrial(t *testing.T) {
	now := time.Now()
	end := now.Add(24 * time.Hour)

	sub := Subscription{TrialEndDate: &end}
	assert.True(t, sub.InTrial(now))
	assert.False(t, sub.InTrial(end.Add(time.Minute)))

	assert.False(t, (&Subscription{}).InTrial(now))
}
