package uow

import (
	"context"

	"github.com/arvenlabs/billing-svc/internal/dal/interfaces/iorderitemrepo"
	"github.com/arvenlabs/billing-svc/internal/dal/interfaces/iorderrepo"
	"github.com/arvenlabs/billing-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/arvenlabs/billing-svc/internal/dal/interfaces/isubscriptionrepo"
	ordermem "github.com/arvenlabs/billing-svc/internal/dal/repositories/order/memory"
	orderitemmem "github.com/arvenlabs/billing-svc/internal/dal/repositories/orderitem/memory"
	outboxmem "github.com/arvenlabs/billing-svc/internal/dal/repositories/outbox/memory"
	subscriptionmem "github.com/arvenlabs/billing-svc/internal/dal/repositories/subscription/memory"
)

// MemoryFactory produces units of work over shared in-memory repositories.
// Begin/Commit/Rollback are no-ops: there is no transactional isolation, which
// is acceptable for tests and the single-process memory store mode.
type MemoryFactory struct {
	orderRepo        *ordermem.MemoryOrderRepository
	orderItemRepo    *orderitemmem.MemoryOrderItemRepository
	subscriptionRepo *subscriptionmem.MemorySubscriptionRepository
	outboxRepo       *outboxmem.MemoryOutboxRepository
}

func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{
		orderRepo:        ordermem.NewMemoryOrderRepository(),
		orderItemRepo:    orderitemmem.NewMemoryOrderItemRepository(),
		subscriptionRepo: subscriptionmem.NewMemorySubscriptionRepository(),
		outboxRepo:       outboxmem.NewMemoryOutboxRepository(),
	}
}

// OutboxRepo exposes the shared outbox repository for the outbox worker.
func (f *MemoryFactory) OutboxRepo() *outboxmem.MemoryOutboxRepository {
	return f.outboxRepo
}

func (f *MemoryFactory) New() UnitOfWork {
	return &memoryUnitOfWork{factory: f}
}

type memoryUnitOfWork struct {
	factory *MemoryFactory
}

func (u *memoryUnitOfWork) Begin(context.Context) error { return nil }
func (u *memoryUnitOfWork) Commit() error               { return nil }
func (u *memoryUnitOfWork) Rollback() error             { return nil }

func (u *memoryUnitOfWork) Orders() iorderrepo.IOrderRepository {
	return u.factory.orderRepo
}

func (u *memoryUnitOfWork) OrderItems() iorderitemrepo.IOrderItemRepository {
	return u.factory.orderItemRepo
}

func (u *memoryUnitOfWork) Subscriptions() isubscriptionrepo.ISubscriptionRepository {
	return u.factory.subscriptionRepo
}

func (u *memoryUnitOfWork) Outbox() ioutboxrepo.IOutboxRepository {
	return u.factory.outboxRepo
}
