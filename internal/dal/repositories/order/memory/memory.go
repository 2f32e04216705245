package memoryrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/arvenlabs/billing-svc/internal/service/models/order"
)

// MemoryOrderRepository is an in-memory order repository guarded by a mutex.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]order.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[uuid.UUID]order.Order),
	}
}

func (r *MemoryOrderRepository) Insert(_ context.Context, o order.Order) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[o.ID] = cloneOrder(o)

	return o, nil
}

func (r *MemoryOrderRepository) Update(_ context.Context, o order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.ID]; !ok {
		return order.ErrOrderNotFound
	}
	r.orders[o.ID] = cloneOrder(o)

	return nil
}

func (r *MemoryOrderRepository) GetByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	clone := cloneOrder(o)

	return &clone, nil
}

func (r *MemoryOrderRepository) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []order.Order
	for _, o := range r.orders {
		if !matches(o, filter) {
			continue
		}
		result = append(result, cloneOrder(o))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []order.Order{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

func matches(o order.Order, filter *order.QueryOrdersModel) bool {
	if len(filter.Ids) > 0 && !containsID(filter.Ids, o.ID) {
		return false
	}
	if len(filter.CustomerIds) > 0 && !containsString(filter.CustomerIds, o.CustomerID) {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, s := range filter.Statuses {
			if s == o.Status {
				found = true

				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.CreatedFrom != nil && o.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && o.CreatedAt.After(*filter.CreatedTo) {
		return false
	}

	return true
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}

	return false
}

func containsString(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}

	return false
}

func cloneOrder(o order.Order) order.Order {
	clone := o
	clone.Milestones = append([]order.Milestone(nil), o.Milestones...)
	clone.OrderItems = append(clone.OrderItems[:0:0], o.OrderItems...)

	return clone
}
