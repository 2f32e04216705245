package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/arvenlabs/billing-svc/internal/service/models/currency"
	"github.com/arvenlabs/billing-svc/internal/service/models/order"
	"github.com/arvenlabs/billing-svc/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, model order.CreateOrderModel) (*order.Order, error)
}

// itemInCreateOrderRequest represents an item in a create order request.
type itemInCreateOrderRequest struct {
	ProductID        string `json:"productId"        validate:"required"`
	ProductTitle     string `json:"productTitle"     validate:"required"`
	Quantity         int    `json:"quantity"         validate:"gt=0"`
	UnitPriceCents   int64  `json:"unitPriceCents"   validate:"gt=0"`
	DeliveryEstimate string `json:"deliveryEstimate"`
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	CustomerID      string                     `json:"customerId"      validate:"required"`
	Items           []itemInCreateOrderRequest `json:"items"           validate:"required,min=1,dive"`
	BillingAddress  string                     `json:"billingAddress"`
	ShippingAddress string                     `json:"shippingAddress"`
	PaymentMethodID string                     `json:"paymentMethodId"`
	DiscountCode    string                     `json:"discountCode"`
	Notes           string                     `json:"notes"`
	Currency        string                     `json:"currency"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

// toModel converts createOrderRequest to order.CreateOrderModel.
func (r *createOrderRequest) toModel() (*order.CreateOrderModel, error) {
	var cur currency.Currency
	if r.Currency != "" {
		parsed, err := currency.ParseCurrency(r.Currency)
		if err != nil {
			return nil, err
		}
		cur = parsed
	}

	items := make([]order.NewOrderItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = order.NewOrderItem{
			ProductID:        item.ProductID,
			ProductTitle:     item.ProductTitle,
			Quantity:         item.Quantity,
			UnitPriceCents:   item.UnitPriceCents,
			DeliveryEstimate: item.DeliveryEstimate,
		}
	}

	return &order.CreateOrderModel{
		CustomerID:      r.CustomerID,
		Items:           items,
		BillingAddress:  r.BillingAddress,
		ShippingAddress: r.ShippingAddress,
		PaymentMethodID: r.PaymentMethodID,
		DiscountCode:    r.DiscountCode,
		Notes:           r.Notes,
		Currency:        cur,
	}, nil
}

// CreateOrder handles the create order request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for create order", "error", err)

		return
	}

	model, err := req.toModel()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error converting create order request to model", "error", err)

		return
	}

	created, err := service.CreateOrder(r.Context(), *model)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error creating order", "error", err)

		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error sending response for create order", "error", err)
	}
}
