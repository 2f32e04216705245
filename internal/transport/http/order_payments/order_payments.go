package orderpayments

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arvenlabs/billing-svc/internal/service/models/order"
	"github.com/arvenlabs/billing-svc/internal/transport/http/httperr"
)

type service interface {
	ProcessOrderPayment(ctx context.Context, orderID uuid.UUID, paymentMethodID string) (*order.Order, error)
	ProcessOrderRefund(ctx context.Context, orderID uuid.UUID, amountCents int64, reason string) (*order.Order, error)
}

type processPaymentRequest struct {
	PaymentMethodID string `json:"paymentMethodId"`
}

// ProcessPayment handles a charge request for an order.
func ProcessPayment(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	req := processPaymentRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}
	}

	paid, err := service.ProcessOrderPayment(r.Context(), orderID, req.PaymentMethodID)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error processing order payment", "order_id", orderID, "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(paid); err != nil {
		slog.Error("Error sending response for process payment", "error", err)
	}
}

type processRefundRequest struct {
	AmountCents int64  `json:"amountCents"`
	Reason      string `json:"reason"`
}

// ProcessRefund handles a full or partial refund request for an order.
func ProcessRefund(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	req := processRefundRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}
	}
	if req.AmountCents < 0 {
		http.Error(w, "amountCents must not be negative", http.StatusBadRequest)

		return
	}

	refunded, err := service.ProcessOrderRefund(r.Context(), orderID, req.AmountCents, req.Reason)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error processing order refund", "order_id", orderID, "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(refunded); err != nil {
		slog.Error("Error sending response for process refund", "error", err)
	}
}
