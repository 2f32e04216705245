package createsubscription

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/arvenlabs/billing-svc/internal/service/models/currency"
	"github.com/arvenlabs/billing-svc/internal/service/models/subscription"
	"github.com/arvenlabs/billing-svc/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	CreateSubscription(ctx context.Context, model subscription.CreateSubscriptionModel) (*subscription.Subscription, error)
}

// createSubscriptionRequest represents a create subscription request.
type createSubscriptionRequest struct {
	CustomerID      string `json:"customerId"      validate:"required"`
	PlanID          string `json:"planId"          validate:"required"`
	BillingCycle    string `json:"billingCycle"`
	PaymentMethodID string `json:"paymentMethodId"`
	CouponCode      string `json:"couponCode"`
	TrialDays       int    `json:"trialDays"       validate:"gte=0"`
	AutoRenew       *bool  `json:"autoRenew"`
	Currency        string `json:"currency"`
}

// Validate validates the create subscription request.
func (r *createSubscriptionRequest) Validate() error {
	return validator.New().Struct(r)
}

// toModel converts createSubscriptionRequest to
// subscription.CreateSubscriptionModel.
func (r *createSubscriptionRequest) toModel() (*subscription.CreateSubscriptionModel, error) {
	var cycle subscription.BillingCycle
	if r.BillingCycle != "" {
		parsed, err := subscription.ParseBillingCycle(r.BillingCycle)
		if err != nil {
			return nil, err
		}
		cycle = parsed
	}

	var cur currency.Currency
	if r.Currency != "" {
		parsed, err := currency.ParseCurrency(r.Currency)
		if err != nil {
			return nil, err
		}
		cur = parsed
	}

	autoRenew := true
	if r.AutoRenew != nil {
		autoRenew = *r.AutoRenew
	}

	return &subscription.CreateSubscriptionModel{
		CustomerID:      r.CustomerID,
		PlanID:          r.PlanID,
		BillingCycle:    cycle,
		PaymentMethodID: r.PaymentMethodID,
		CouponCode:      r.CouponCode,
		TrialDays:       r.TrialDays,
		AutoRenew:       autoRenew,
		Currency:        cur,
	}, nil
}

// CreateSubscription handles the create subscription request.
func CreateSubscription(w http.ResponseWriter, r *http.Request, service service) {
	req := createSubscriptionRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for create subscription", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for create subscription", "error", err)

		return
	}

	model, err := req.toModel()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	created, err := service.CreateSubscription(r.Context(), *model)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error creating subscription", "error", err)

		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error sending response for create subscription", "error", err)
	}
}
