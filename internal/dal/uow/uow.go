package uow

import (
	"context"

	"github.com/arvenlabs/billing-svc/internal/dal/interfaces/iorderitemrepo"
	"github.com/arvenlabs/billing-svc/internal/dal/interfaces/iorderrepo"
	"github.com/arvenlabs/billing-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/arvenlabs/billing-svc/internal/dal/interfaces/isubscriptionrepo"
)

// UnitOfWork scopes repository access to a single transaction. Outbox
// messages written through it share the transaction with the domain change
// they describe.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	Orders() iorderrepo.IOrderRepository
	OrderItems() iorderitemrepo.IOrderItemRepository
	Subscriptions() isubscriptionrepo.ISubscriptionRepository
	Outbox() ioutboxrepo.IOutboxRepository
}

// Factory produces fresh units of work.
type Factory interface {
	New() UnitOfWork
}
