package stripegateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/arvenlabs/billing-svc/internal/payment"
)

// PlanPriceIDs maps plan IDs to Stripe price IDs. Yearly prices are keyed
// as "<planID>:yearly". These must match price objects configured in the
// Stripe dashboard.
type PlanPriceIDs map[string]string

// Gateway implements payment.Gateway using the Stripe API.
type Gateway struct {
	webhookSecret string
	planPriceIDs  PlanPriceIDs
}

// New creates a Stripe gateway with the given API key, webhook secret and
// mapping from plan IDs to Stripe price IDs.
func New(apiKey, webhookSecret string, planPriceIDs PlanPriceIDs) *Gateway {
	stripe.Key = apiKey

	return &Gateway{
		webhookSecret: webhookSecret,
		planPriceIDs:  planPriceIDs,
	}
}

// ProcessPayment charges the amount through a confirmed PaymentIntent.
func (g *Gateway) ProcessPayment(_ context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.AmountCents),
		Currency:      stripe.String(strings.ToLower(req.Currency.String())),
		Customer:      stripe.String(req.CustomerID),
		PaymentMethod: stripe.String(req.PaymentMethodID),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
		Description:   stripe.String(req.Description),
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, wrapStripeErr("create payment intent", err)
	}

	return &payment.ChargeResult{
		PaymentID: pi.ID,
		Status:    payment.ParseProviderStatus(string(pi.Status)),
	}, nil
}

// ConfirmPayment confirms a previously created PaymentIntent.
func (g *Gateway) ConfirmPayment(_ context.Context, paymentID string) (*payment.ChargeResult, error) {
	pi, err := paymentintent.Confirm(paymentID, &stripe.PaymentIntentConfirmParams{})
	if err != nil {
		return nil, wrapStripeErr("confirm payment intent", err)
	}

	return &payment.ChargeResult{
		PaymentID: pi.ID,
		Status:    payment.ParseProviderStatus(string(pi.Status)),
	}, nil
}

// ProcessRefund refunds a PaymentIntent, fully when AmountCents is zero.
func (g *Gateway) ProcessRefund(_ context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.PaymentID),
	}
	if req.AmountCents > 0 {
		params.Amount = stripe.Int64(req.AmountCents)
	}
	if req.Reason != "" {
		params.Reason = stripe.String(req.Reason)
	}

	r, err := refund.New(params)
	if err != nil {
		return nil, wrapStripeErr("create refund", err)
	}

	return &payment.RefundResult{
		RefundID: r.ID,
		Status:   payment.ParseProviderStatus(string(r.Status)),
	}, nil
}

// CreateRecurringPayment starts a Stripe subscription on the configured
// price for the plan.
func (g *Gateway) CreateRecurringPayment(_ context.Context, req payment.RecurringRequest) (*payment.RecurringResult, error) {
	key := req.PlanID
	if req.Yearly {
		key += ":yearly"
	}
	priceID, ok := g.planPriceIDs[key]
	if !ok {
		return nil, fmt.Errorf("no stripe price ID configured for plan %q", key)
	}

	params := &stripe.SubscriptionParams{
		Customer: stripe.String(req.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		DefaultPaymentMethod: stripe.String(req.PaymentMethodID),
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	sub, err := subscription.New(params)
	if err != nil {
		return nil, wrapStripeErr("create subscription", err)
	}

	return &payment.RecurringResult{
		RecurringID: sub.ID,
		Status:      payment.ParseProviderStatus(string(sub.Status)),
	}, nil
}

// CancelRecurringPayment cancels a Stripe subscription.
func (g *Gateway) CancelRecurringPayment(_ context.Context, recurringID string) error {
	if _, err := subscription.Cancel(recurringID, &stripe.SubscriptionCancelParams{}); err != nil {
		return wrapStripeErr("cancel subscription", err)
	}

	return nil
}

// GetPaymentStatus fetches the normalized status of a PaymentIntent.
func (g *Gateway) GetPaymentStatus(_ context.Context, paymentID string) (payment.Status, error) {
	pi, err := paymentintent.Get(paymentID, nil)
	if err != nil {
		return "", wrapStripeErr("get payment intent", err)
	}

	return payment.ParseProviderStatus(string(pi.Status)), nil
}

// VerifyWebhook validates the Stripe webhook signature and returns the event.
func (g *Gateway) VerifyWebhook(payload []byte, signature string) (*stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	return &event, nil
}

func wrapStripeErr(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return fmt.Errorf("%s: %w", op, &payment.ProviderError{
			Code:    string(stripeErr.Code),
			Message: stripeErr.Msg,
		})
	}

	return fmt.Errorf("%s: %w", op, err)
}

var _ payment.Gateway = (*Gateway)(nil)
