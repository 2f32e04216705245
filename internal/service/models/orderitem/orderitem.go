package orderitem

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/arvenlabs/billing-svc/internal/service/models/currency"
	"github.com/google/uuid"
)

type ItemStatus string

const (
	ItemStatusPending    ItemStatus = "pending"
	ItemStatusInProgress ItemStatus = "in_progress"
	ItemStatusCompleted  ItemStatus = "completed"
	ItemStatusCancelled  ItemStatus = "cancelled"
)

var ErrInvalidItemStatus = errors.New("invalid order item status")

func (s ItemStatus) String() string {
	return string(s)
}

func (s ItemStatus) Value() (driver.Value, error) {
	return s.String(), nil
}

func ParseItemStatus(s string) (ItemStatus, error) {
	switch ItemStatus(s) {
	case ItemStatusPending, ItemStatusInProgress, ItemStatusCompleted, ItemStatusCancelled:
		return ItemStatus(s), nil
	default:
		return "", ErrInvalidItemStatus
	}
}

// OrderItem represents a line item within an order.
type OrderItem struct {
	ID             uuid.UUID         `json:"id"`
	OrderID        uuid.UUID         `json:"orderId"`
	ProductID      string            `json:"productId"`
	ProductTitle   string            `json:"productTitle"`
	Quantity       int               `json:"quantity"`
	UnitPriceCents int64             `json:"unitPriceCents"`
	TotalCents     int64             `json:"totalCents"`
	PriceCurrency  currency.Currency `json:"priceCurrency"`
	// DeliveryEstimate is the product's free-form lead-time string,
	// e.g. "5-7 días" or "2 semanas".
	DeliveryEstimate string     `json:"deliveryEstimate"`
	Status           ItemStatus `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
