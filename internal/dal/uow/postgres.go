package uow

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/arvenlabs/billing-svc/internal/dal/interfaces/iorderitemrepo"
	"github.com/arvenlabs/billing-svc/internal/dal/interfaces/iorderrepo"
	"github.com/arvenlabs/billing-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/arvenlabs/billing-svc/internal/dal/interfaces/isubscriptionrepo"
	"github.com/arvenlabs/billing-svc/internal/dal/postgres"
	orderrepo "github.com/arvenlabs/billing-svc/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/arvenlabs/billing-svc/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/arvenlabs/billing-svc/internal/dal/repositories/outbox/postgres"
	subscriptionrepo "github.com/arvenlabs/billing-svc/internal/dal/repositories/subscription/postgres"
)

type postgresUnitOfWork struct {
	db *sqlx.DB
	tx *sqlx.Tx

	orderRepo        iorderrepo.IOrderRepository
	orderItemRepo    iorderitemrepo.IOrderItemRepository
	subscriptionRepo isubscriptionrepo.ISubscriptionRepository
	outboxRepo       ioutboxrepo.IOutboxRepository
}

// PostgresFactory produces units of work over a Postgres client.
type PostgresFactory struct {
	client *postgres.Client
}

func NewPostgresFactory(client *postgres.Client) *PostgresFactory {
	return &PostgresFactory{client: client}
}

func (f *PostgresFactory) New() UnitOfWork {
	db := f.client.DB()

	return &postgresUnitOfWork{
		db:               db,
		orderRepo:        orderrepo.NewPostgresOrderRepository(db),
		orderItemRepo:    orderitemrepo.NewPostgresOrderItemRepository(db),
		subscriptionRepo: subscriptionrepo.NewPostgresSubscriptionRepository(db),
		outboxRepo:       outboxrepo.NewPostgresOutboxRepository(db),
	}
}

func (u *postgresUnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)
	u.subscriptionRepo = subscriptionrepo.NewPostgresSubscriptionRepository(tx)
	u.outboxRepo = outboxrepo.NewPostgresOutboxRepository(tx)

	return nil
}

func (u *postgresUnitOfWork) Commit() error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit()
}

func (u *postgresUnitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback()
}

func (u *postgresUnitOfWork) Orders() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *postgresUnitOfWork) OrderItems() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *postgresUnitOfWork) Subscriptions() isubscriptionrepo.ISubscriptionRepository {
	return u.subscriptionRepo
}

func (u *postgresUnitOfWork) Outbox() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}
