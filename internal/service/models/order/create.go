package order

import (
	"github.com/arvenlabs/billing-svc/internal/service/models/currency"
)

// CreateOrderModel carries the caller-supplied fields for a new order.
type CreateOrderModel struct {
	CustomerID      string            `json:"customerId"`
	Items           []NewOrderItem    `json:"items"`
	BillingAddress  string            `json:"billingAddress"`
	ShippingAddress string            `json:"shippingAddress,omitempty"`
	PaymentMethodID string            `json:"paymentMethodId"`
	DiscountCode    string            `json:"discountCode,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Currency        currency.Currency `json:"currency,omitempty"`
}

// NewOrderItem is one line item of a new order.
type NewOrderItem struct {
	ProductID        string `json:"productId"`
	ProductTitle     string `json:"productTitle"`
	Quantity         int    `json:"quantity"`
	UnitPriceCents   int64  `json:"unitPriceCents"`
	DeliveryEstimate string `json:"deliveryEstimate,omitempty"`
}
