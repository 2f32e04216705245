package subscription

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/arvenlabs/billing-svc/internal/service/models/money"
)

// BillingCycle is the recurrence period governing price and next-charge date.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

var ErrInvalidBillingCycle = errors.New("invalid billing cycle")

// YearlyDiscount is the multiplier applied to twelve monthly payments when
// billing yearly.
const YearlyDiscount = 0.9

// couponRates maps recognized coupon codes to their rates. Unknown codes are
// silently ignored.
var couponRates = map[string]float64{
	"FIRST10":   0.10,
	"SAVE20":    0.20,
	"WELCOME50": 0.50,
}

// CouponRate returns the rate for a coupon code, 0 for unknown codes.
func CouponRate(code string) float64 {
	return couponRates[code]
}

func (c BillingCycle) String() string { return string(c) }

func (c BillingCycle) Value() (driver.Value, error) { return c.String(), nil }

func ParseBillingCycle(s string) (BillingCycle, error) {
	switch BillingCycle(s) {
	case BillingCycleMonthly, BillingCycleYearly:
		return BillingCycle(s), nil
	default:
		return "", ErrInvalidBillingCycle
	}
}

// CyclePrice derives the subscription price from a plan's monthly price:
// the monthly price as-is, or twelve months with the yearly discount.
func CyclePrice(monthlyCents int64, cycle BillingCycle) int64 {
	if cycle == BillingCycleYearly {
		return money.ApplyRate(monthlyCents*12, YearlyDiscount)
	}

	return monthlyCents
}

// DiscountedPrice applies a coupon rate to a cycle price.
func DiscountedPrice(priceCents int64, couponCode string) int64 {
	return priceCents - money.ApplyRate(priceCents, CouponRate(couponCode))
}

// Advance returns from plus one billing-cycle unit: a calendar month for
// monthly, a calendar year for yearly.
func (c BillingCycle) Advance(from time.Time) time.Time {
	if c == BillingCycleYearly {
		return from.AddDate(1, 0, 0)
	}

	return from.AddDate(0, 1, 0)
}

// PeriodKey identifies one billing period of one subscription, used to guard
// against duplicate billing attempts.
func (s *Subscription) PeriodKey() string {
	return s.ID.String() + ":" + s.NextBillingDate.UTC().Format(time.RFC3339)
}
