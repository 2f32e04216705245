package subscription

import "github.com/arvenlabs/billing-svc/internal/service/models/currency"

// CreateSubscriptionModel is the input for opening a subscription.
type CreateSubscriptionModel struct {
	CustomerID      string
	PlanID          string
	BillingCycle    BillingCycle
	PaymentMethodID string
	CouponCode      string
	TrialDays       int
	AutoRenew       bool
	Currency        currency.Currency
}

// UpdateSubscriptionModel carries the mutable fields of a subscription.
// Nil pointers leave the current value in place.
type UpdateSubscriptionModel struct {
	PlanID          *string
	BillingCycle    *BillingCycle
	PaymentMethodID *string
	AutoRenew       *bool
}
