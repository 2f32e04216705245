package updatesubscription

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arvenlabs/billing-svc/internal/service/models/subscription"
	"github.com/arvenlabs/billing-svc/internal/transport/http/httperr"
)

type service interface {
	UpdateSubscription(ctx context.Context, id uuid.UUID, model subscription.UpdateSubscriptionModel) (*subscription.Subscription, error)
	CancelSubscription(ctx context.Context, id uuid.UUID, reason string, atPeriodEnd bool) (*subscription.Subscription, error)
	PauseSubscription(ctx context.Context, id uuid.UUID, resumeBillingDate *time.Time) (*subscription.Subscription, error)
	ResumeSubscription(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error)
}

type pauseSubscriptionRequest struct {
	ResumeBillingDate *time.Time `json:"resumeBillingDate"`
}

type updateSubscriptionRequest struct {
	PlanID          *string `json:"planId"`
	BillingCycle    *string `json:"billingCycle"`
	PaymentMethodID *string `json:"paymentMethodId"`
	AutoRenew       *bool   `json:"autoRenew"`
}

func (r *updateSubscriptionRequest) toModel() (*subscription.UpdateSubscriptionModel, error) {
	model := subscription.UpdateSubscriptionModel{
		PlanID:          r.PlanID,
		PaymentMethodID: r.PaymentMethodID,
		AutoRenew:       r.AutoRenew,
	}
	if r.BillingCycle != nil {
		cycle, err := subscription.ParseBillingCycle(*r.BillingCycle)
		if err != nil {
			return nil, err
		}
		model.BillingCycle = &cycle
	}

	return &model, nil
}

// UpdateSubscription handles plan, cycle, payment method and auto-renew
// changes.
func UpdateSubscription(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "subscriptionId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	req := updateSubscriptionRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for update subscription", "error", err)

		return
	}

	model, err := req.toModel()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	updated, err := service.UpdateSubscription(r.Context(), id, *model)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error updating subscription", "subscription_id", id, "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(updated); err != nil {
		slog.Error("Error sending response for update subscription", "error", err)
	}
}

type cancelSubscriptionRequest struct {
	Reason      string `json:"reason"`
	AtPeriodEnd bool   `json:"atPeriodEnd"`
}

// Cancel handles a cancellation request, immediate or at period end.
func Cancel(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "subscriptionId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	req := cancelSubscriptionRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}
	}

	cancelled, err := service.CancelSubscription(r.Context(), id, req.Reason, req.AtPeriodEnd)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error cancelling subscription", "subscription_id", id, "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(cancelled); err != nil {
		slog.Error("Error sending response for cancel subscription", "error", err)
	}
}

// Pause handles a pause request. The body is optional and may carry a
// billing date to resume charging on.
func Pause(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "subscriptionId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	var req pauseSubscriptionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}
	}

	paused, err := service.PauseSubscription(r.Context(), id, req.ResumeBillingDate)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error pausing subscription", "subscription_id", id, "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(paused); err != nil {
		slog.Error("Error sending response for pause subscription", "error", err)
	}
}

// Resume handles a resume request.
func Resume(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "subscriptionId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	resumed, err := service.ResumeSubscription(r.Context(), id)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error resuming subscription", "subscription_id", id, "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(resumed); err != nil {
		slog.Error("Error sending response for resume subscription", "error", err)
	}
}
