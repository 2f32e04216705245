package listsubscriptions

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/schema"

	"github.com/arvenlabs/billing-svc/internal/service/models/subscription"
	"github.com/arvenlabs/billing-svc/internal/transport/http/httperr"
)

type service interface {
	GetSubscriptions(ctx context.Context, filter *subscription.QuerySubscriptionsModel) ([]subscription.Subscription, error)
	GetSubscription(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error)
}

type querySubscriptionsRequest struct {
	Ids         []uuid.UUID `schema:"ids,omitempty"`
	CustomerIds []string    `schema:"customerIds,omitempty"`
	Statuses    []string    `schema:"statuses,omitempty"`
	Limit       int         `schema:"limit,omitempty"`
	Offset      int         `schema:"offset,omitempty"`
}

func (q *querySubscriptionsRequest) ToModel() (*subscription.QuerySubscriptionsModel, error) {
	statuses := make([]subscription.Status, 0, len(q.Statuses))
	for _, s := range q.Statuses {
		status, err := subscription.ParseStatus(s)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}

	return &subscription.QuerySubscriptionsModel{
		Ids:         q.Ids,
		CustomerIds: q.CustomerIds,
		Statuses:    statuses,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}, nil
}

func ListSubscriptions(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &querySubscriptionsRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	filter, err := query.ToModel()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	subs, err := service.GetSubscriptions(r.Context(), filter)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error getting subscriptions", "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(subs); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

func GetSubscription(w http.ResponseWriter, r *http.Request, service service) {
	id, err := uuid.Parse(chi.URLParam(r, "subscriptionId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	sub, err := service.GetSubscription(r.Context(), id)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error getting subscription", "subscription_id", id, "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(sub); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
