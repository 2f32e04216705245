package subscriptionbilling

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arvenlabs/billing-svc/internal/service/models/subscription"
	"github.com/arvenlabs/billing-svc/internal/transport/http/httperr"
)

type service interface {
	ProcessSubscriptionBilling(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error)
}

// ProcessBilling handles a manual billing trigger for one subscription.
func ProcessBilling(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "subscriptionId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	billed, err := service.ProcessSubscriptionBilling(r.Context(), id)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error processing subscription billing", "subscription_id", id, "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(billed); err != nil {
		slog.Error("Error sending response for process billing", "error", err)
	}
}
