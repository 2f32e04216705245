package isubscriptionrepo

import (
	"context"

	"github.com/arvenlabs/billing-svc/internal/service/models/subscription"
	"github.com/google/uuid"
)

// ISubscriptionRepository is an interface for the subscription repository.
type ISubscriptionRepository interface {
	Insert(ctx context.Context, sub subscription.Subscription) (subscription.Subscription, error)
	Update(ctx context.Context, sub subscription.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error)
	GetByProviderID(ctx context.Context, providerID string) (*subscription.Subscription, error)
	Query(ctx context.Context, filter *subscription.QuerySubscriptionsModel) ([]subscription.Subscription, error)
}
