package iorderrepo

import (
	"context"

	"github.com/arvenlabs/billing-svc/internal/service/models/order"
	"github.com/google/uuid"
)

// IOrderRepository is an interface for the order repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	Update(ctx context.Context, o order.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}
