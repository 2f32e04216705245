package iorderitemrepo

import (
	"context"

	"github.com/arvenlabs/billing-svc/internal/service/models/orderitem"
	"github.com/google/uuid"
)

// IOrderItemRepository is an interface for the order item repository.
type IOrderItemRepository interface {
	BulkInsert(ctx context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error)
	QueryByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]orderitem.OrderItem, error)
	Update(ctx context.Context, item orderitem.OrderItem) error
}
