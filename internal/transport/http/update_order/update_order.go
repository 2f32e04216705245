package updateorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/arvenlabs/billing-svc/internal/service/models/order"
	"github.com/arvenlabs/billing-svc/internal/transport/http/httperr"
)

type service interface {
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status order.Status, notes string, notifyCustomer bool) (*order.Order, error)
	AssignOrder(ctx context.Context, orderID uuid.UUID, assigneeID string) error
	UpdateOrderMilestone(ctx context.Context, orderID uuid.UUID, milestoneID uuid.UUID, status order.MilestoneStatus, deliverables []string) error
}

type updateStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	Notes          string `json:"notes"`
	NotifyCustomer bool   `json:"notifyCustomer"`
}

// UpdateStatus handles a fulfillment status transition request.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	req := updateStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for update status", "error", err)

		return
	}
	if err := validator.New().Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	updated, err := service.UpdateOrderStatus(r.Context(), orderID, status, req.Notes, req.NotifyCustomer)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error updating order status", "order_id", orderID, "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(updated); err != nil {
		slog.Error("Error sending response for update status", "error", err)
	}
}

type assignRequest struct {
	AssigneeID string `json:"assigneeId" validate:"required"`
}

// Assign handles an order assignment request.
func Assign(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	req := assignRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}
	if err := validator.New().Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	if err := service.AssignOrder(r.Context(), orderID, req.AssigneeID); err != nil {
		httperr.Write(w, err)
		slog.Error("Error assigning order", "order_id", orderID, "error", err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateMilestoneRequest struct {
	Status       string   `json:"status" validate:"required"`
	Deliverables []string `json:"deliverables"`
}

// UpdateMilestone handles a milestone mutation request.
func UpdateMilestone(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}
	milestoneID, err := uuid.Parse(chi.URLParam(r, "milestoneId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	req := updateMilestoneRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}
	if err := validator.New().Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	status, err := order.ParseMilestoneStatus(req.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	if err := service.UpdateOrderMilestone(r.Context(), orderID, milestoneID, status, req.Deliverables); err != nil {
		httperr.Write(w, err)
		slog.Error("Error updating milestone", "order_id", orderID, "milestone_id", milestoneID, "error", err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
