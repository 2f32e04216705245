package orderstats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/schema"

	"github.com/arvenlabs/billing-svc/internal/service/models/order"
	"github.com/arvenlabs/billing-svc/internal/transport/http/httperr"
)

type service interface {
	GetOrderStats(ctx context.Context, dateFrom, dateTo *time.Time) (*order.Stats, error)
}

type statsRequest struct {
	DateFrom string `schema:"dateFrom,omitempty"`
	DateTo   string `schema:"dateTo,omitempty"`
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func OrderStats(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &statsRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	dateFrom, err := parseDate(query.DateFrom)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}
	dateTo, err := parseDate(query.DateTo)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	stats, err := service.GetOrderStats(r.Context(), dateFrom, dateTo)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error getting order stats", "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(stats); err != nil {
		slog.Error("Error sending response for order stats", "error", err)
	}
}
