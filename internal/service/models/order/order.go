package order

import (
	"errors"
	"time"

	"github.com/arvenlabs/billing-svc/internal/service/models/currency"
	"github.com/arvenlabs/billing-svc/internal/service/models/orderitem"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrOrderNotPaid      = errors.New("order is not paid")
	ErrNoItems           = errors.New("order has no items")
)

// Order represents a one-time purchase with line items, payment state and
// delivery milestones.
type Order struct {
	ID                uuid.UUID             `json:"id"`
	OrderNumber       string                `json:"orderNumber"`
	CustomerID        string                `json:"customerId"`
	Status            Status                `json:"status"`
	PaymentStatus     PaymentStatus         `json:"paymentStatus"`
	SubtotalCents     int64                 `json:"subtotalCents"`
	DiscountCents     int64                 `json:"discountCents"`
	TaxCents          int64                 `json:"taxCents"`
	TotalCents        int64                 `json:"totalCents"`
	RefundedCents     int64                 `json:"refundedCents,omitempty"`
	Currency          currency.Currency     `json:"currency"`
	DiscountCode      string                `json:"discountCode,omitempty"`
	BillingAddress    string                `json:"billingAddress"`
	ShippingAddress   string                `json:"shippingAddress,omitempty"`
	PaymentMethodID   string                `json:"paymentMethodId"`
	PaymentID         string                `json:"paymentId,omitempty"`
	AssigneeID        string                `json:"assigneeId,omitempty"`
	Notes             string                `json:"notes,omitempty"`
	EstimatedDelivery time.Time             `json:"estimatedDelivery"`
	Milestones        []Milestone           `json:"milestones"`
	OrderItems        []orderitem.OrderItem `json:"orderItems"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
	DeliveredAt       *time.Time            `json:"deliveredAt,omitempty"`
}

// RecomputeTotal derives the total from the money components. The total is
// never set independently.
func (o *Order) RecomputeTotal() {
	o.TotalCents = o.SubtotalCents - o.DiscountCents + o.TaxCents
}
