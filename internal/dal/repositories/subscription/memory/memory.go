package memoryrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/arvenlabs/billing-svc/internal/service/models/subscription"
)

// MemorySubscriptionRepository is an in-memory subscription repository.
type MemorySubscriptionRepository struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]subscription.Subscription
}

func NewMemorySubscriptionRepository() *MemorySubscriptionRepository {
	return &MemorySubscriptionRepository{
		subs: make(map[uuid.UUID]subscription.Subscription),
	}
}

func (r *MemorySubscriptionRepository) Insert(_ context.Context, sub subscription.Subscription) (subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs[sub.ID] = sub

	return sub, nil
}

func (r *MemorySubscriptionRepository) Update(_ context.Context, sub subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[sub.ID]; !ok {
		return subscription.ErrSubscriptionNotFound
	}
	r.subs[sub.ID] = sub

	return nil
}

func (r *MemorySubscriptionRepository) GetByID(_ context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.subs[id]
	if !ok {
		return nil, subscription.ErrSubscriptionNotFound
	}

	return &sub, nil
}

func (r *MemorySubscriptionRepository) GetByProviderID(_ context.Context, providerID string) (*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sub := range r.subs {
		if sub.ProviderSubscriptionID == providerID {
			return &sub, nil
		}
	}

	return nil, subscription.ErrSubscriptionNotFound
}

func (r *MemorySubscriptionRepository) Query(_ context.Context, filter *subscription.QuerySubscriptionsModel) ([]subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []subscription.Subscription
	for _, sub := range r.subs {
		if !matches(sub, filter) {
			continue
		}
		result = append(result, sub)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []subscription.Subscription{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

func matches(sub subscription.Subscription, filter *subscription.QuerySubscriptionsModel) bool {
	if len(filter.Ids) > 0 {
		found := false
		for _, id := range filter.Ids {
			if id == sub.ID {
				found = true

				break
			}
		}
		if !found {
			return false
		}
	}
	if len(filter.CustomerIds) > 0 {
		found := false
		for _, id := range filter.CustomerIds {
			if id == sub.CustomerID {
				found = true

				break
			}
		}
		if !found {
			return false
		}
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, s := range filter.Statuses {
			if s == sub.Status {
				found = true

				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.DueBefore != nil && sub.NextBillingDate.After(*filter.DueBefore) {
		return false
	}
	if filter.AutoRenewOnly && !sub.AutoRenew {
		return false
	}

	return true
}
