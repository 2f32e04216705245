package order

import (
	"fmt"
	"time"

	"github.com/arvenlabs/billing-svc/internal/service/models/money"
	"github.com/arvenlabs/billing-svc/internal/service/models/orderitem"
)

// TaxRate is the VAT applied on the post-discount subtotal.
const TaxRate = 0.21

// DefaultLeadDays is used when an item's lead-time string has no digits.
const DefaultLeadDays = 7

// discountRates maps recognized discount codes to their rates. Unknown codes
// yield a zero rate, not an error.
var discountRates = map[string]float64{
	"WELCOME10": 0.10,
	"SAVE20":    0.20,
	"FIRST50":   0.50,
}

// DiscountRate returns the rate for a discount code, 0 for unknown codes.
func DiscountRate(code string) float64 {
	return discountRates[code]
}

// ComputeTotals fills the money fields from the line items and discount code.
// Line totals are recomputed from unit price and quantity as a side effect.
func (o *Order) ComputeTotals() {
	var subtotal int64
	for i := range o.OrderItems {
		o.OrderItems[i].TotalCents = o.OrderItems[i].UnitPriceCents * int64(o.OrderItems[i].Quantity)
		subtotal += o.OrderItems[i].TotalCents
	}

	o.SubtotalCents = subtotal
	o.DiscountCents = money.ApplyRate(subtotal, DiscountRate(o.DiscountCode))
	o.TaxCents = money.ApplyRate(subtotal-o.DiscountCents, TaxRate)
	o.RecomputeTotal()
}

// LeadDays extracts the leading run of digits from a lead-time string such as
// "5-7 días" or "2 semanas". Strings without digits contribute the default.
func LeadDays(estimate string) int {
	days := 0
	seen := false
	for _, r := range estimate {
		if r >= '0' && r <= '9' {
			days = days*10 + int(r-'0')
			seen = true

			continue
		}
		if seen {
			break
		}
	}

	if !seen {
		return DefaultLeadDays
	}

	return days
}

// EstimateDelivery derives the delivery estimate as the maximum lead time
// across items, added to now.
func EstimateDelivery(items []orderitem.OrderItem, now time.Time) time.Time {
	maxDays := 0
	for _, item := range items {
		if d := LeadDays(item.DeliveryEstimate); d > maxDays {
			maxDays = d
		}
	}
	if maxDays == 0 {
		maxDays = DefaultLeadDays
	}

	return now.AddDate(0, 0, maxDays)
}

// FormatOrderNumber renders a sequential counter value as a human-readable
// order code, e.g. 1000 -> "ORD-001000".
func FormatOrderNumber(seq int64) string {
	return fmt.Sprintf("ORD-%06d", seq)
}
