package subscriptionstats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/arvenlabs/billing-svc/internal/service/models/subscription"
	"github.com/arvenlabs/billing-svc/internal/transport/http/httperr"
)

type service interface {
	GetSubscriptionStats(ctx context.Context) (*subscription.Stats, error)
}

func SubscriptionStats(w http.ResponseWriter, r *http.Request, service service) {
	stats, err := service.GetSubscriptionStats(r.Context())
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error getting subscription stats", "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(stats); err != nil {
		slog.Error("Error sending response for subscription stats", "error", err)
	}
}
