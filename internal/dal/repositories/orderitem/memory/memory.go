package memoryrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/arvenlabs/billing-svc/internal/service/models/orderitem"
)

// MemoryOrderItemRepository is an in-memory order item repository.
type MemoryOrderItemRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]orderitem.OrderItem
}

func NewMemoryOrderItemRepository() *MemoryOrderItemRepository {
	return &MemoryOrderItemRepository{
		items: make(map[uuid.UUID]orderitem.OrderItem),
	}
}

func (r *MemoryOrderItemRepository) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.items[item.ID] = item
	}

	return items, nil
}

func (r *MemoryOrderItemRepository) QueryByOrderIDs(_ context.Context, orderIDs []uuid.UUID) ([]orderitem.OrderItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[uuid.UUID]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		wanted[id] = struct{}{}
	}

	var result []orderitem.OrderItem
	for _, item := range r.items {
		if _, ok := wanted[item.OrderID]; ok {
			result = append(result, item)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (r *MemoryOrderItemRepository) Update(_ context.Context, item orderitem.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item

	return nil
}
