package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/arvenlabs/billing-svc/internal/service/models/currency"
	"github.com/arvenlabs/billing-svc/internal/service/models/orderitem"
)

// OrderItemDal represents the order item data access layer model.
type OrderItemDal struct {
	Id               uuid.UUID `db:"id"`
	OrderId          uuid.UUID `db:"order_id"`
	ProductId        string    `db:"product_id"`
	ProductTitle     string    `db:"product_title"`
	Quantity         int       `db:"quantity"`
	UnitPriceCents   int64     `db:"unit_price_cents"`
	TotalCents       int64     `db:"total_cents"`
	PriceCurrency    string    `db:"price_currency"`
	DeliveryEstimate string    `db:"delivery_estimate"`
	Status           string    `db:"status"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// ToModel converts OrderItemDal to the service layer model.
func (d *OrderItemDal) ToModel() (*orderitem.OrderItem, error) {
	cur, err := currency.ParseCurrency(d.PriceCurrency)
	if err != nil {
		return nil, err
	}
	status, err := orderitem.ParseItemStatus(d.Status)
	if err != nil {
		return nil, err
	}

	return &orderitem.OrderItem{
		ID:               d.Id,
		OrderID:          d.OrderId,
		ProductID:        d.ProductId,
		ProductTitle:     d.ProductTitle,
		Quantity:         d.Quantity,
		UnitPriceCents:   d.UnitPriceCents,
		TotalCents:       d.TotalCents,
		PriceCurrency:    cur,
		DeliveryEstimate: d.DeliveryEstimate,
		Status:           status,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}, nil
}

var itemColumns = []string{
	"id",
	"order_id",
	"product_id",
	"product_title",
	"quantity",
	"unit_price_cents",
	"total_cents",
	"price_currency",
	"delivery_estimate",
	"status",
	"created_at",
	"updated_at",
}

type PostgresOrderItemRepository struct {
	conn sqlx.ExtContext
}

func NewPostgresOrderItemRepository(conn sqlx.ExtContext) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
	}
}

// BulkInsert inserts multiple order items.
func (r *PostgresOrderItemRepository) BulkInsert(ctx context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	if len(items) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	builder := sq.Insert("order_items").
		Columns(itemColumns...).
		PlaceholderFormat(sq.Dollar)

	for _, item := range items {
		builder = builder.Values(
			item.ID,
			item.OrderID,
			item.ProductID,
			item.ProductTitle,
			item.Quantity,
			item.UnitPriceCents,
			item.TotalCents,
			item.PriceCurrency.String(),
			item.DeliveryEstimate,
			item.Status.String(),
			item.CreatedAt,
			item.UpdatedAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to bulk insert order items: %w", err)
	}

	return items, nil
}

// QueryByOrderIDs retrieves all items belonging to the given orders.
func (r *PostgresOrderItemRepository) QueryByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]orderitem.OrderItem, error) {
	if len(orderIDs) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	ids := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		ids[i] = id.String()
	}

	query, args, err := sq.Select(itemColumns...).
		From("order_items").
		Where(sq.Expr("order_id = ANY(?)", pq.Array(ids))).
		OrderBy("created_at ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dals []OrderItemDal
	if err := sqlx.SelectContext(ctx, r.conn, &dals, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}

	result := make([]orderitem.OrderItem, 0, len(dals))
	for i := range dals {
		model, err := dals[i].ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order item dal to model: %w", err)
		}
		result = append(result, *model)
	}

	return result, nil
}

// Update persists the mutable fields of an order item.
func (r *PostgresOrderItemRepository) Update(ctx context.Context, item orderitem.OrderItem) error {
	query, args, err := sq.Update("order_items").
		Set("status", item.Status.String()).
		Set("updated_at", item.UpdatedAt).
		Where(sq.Eq{"id": item.ID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update order item: %w", err)
	}

	return nil
}
