package postgresrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/arvenlabs/billing-svc/internal/service/models/currency"
	"github.com/arvenlabs/billing-svc/internal/service/models/order"
	"github.com/arvenlabs/billing-svc/internal/service/models/orderitem"
)

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id                uuid.UUID      `db:"id"`
	OrderNumber       string         `db:"order_number"`
	CustomerId        string         `db:"customer_id"`
	Status            string         `db:"status"`
	PaymentStatus     string         `db:"payment_status"`
	SubtotalCents     int64          `db:"subtotal_cents"`
	DiscountCents     int64          `db:"discount_cents"`
	TaxCents          int64          `db:"tax_cents"`
	TotalCents        int64          `db:"total_cents"`
	RefundedCents     int64          `db:"refunded_cents"`
	Currency          string         `db:"currency"`
	DiscountCode      sql.NullString `db:"discount_code"`
	BillingAddress    string         `db:"billing_address"`
	ShippingAddress   sql.NullString `db:"shipping_address"`
	PaymentMethodId   string         `db:"payment_method_id"`
	PaymentId         sql.NullString `db:"payment_id"`
	AssigneeId        sql.NullString `db:"assignee_id"`
	Notes             sql.NullString `db:"notes"`
	EstimatedDelivery time.Time      `db:"estimated_delivery"`
	Milestones        []byte         `db:"milestones"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
	DeliveredAt       *time.Time     `db:"delivered_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	cur, err := currency.ParseCurrency(o.Currency)
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := order.ParsePaymentStatus(o.PaymentStatus)
	if err != nil {
		return nil, err
	}

	var milestones []order.Milestone
	if len(o.Milestones) > 0 {
		if err := json.Unmarshal(o.Milestones, &milestones); err != nil {
			return nil, fmt.Errorf("failed to unmarshal milestones: %w", err)
		}
	}

	return &order.Order{
		ID:                o.Id,
		OrderNumber:       o.OrderNumber,
		CustomerID:        o.CustomerId,
		Status:            status,
		PaymentStatus:     paymentStatus,
		SubtotalCents:     o.SubtotalCents,
		DiscountCents:     o.DiscountCents,
		TaxCents:          o.TaxCents,
		TotalCents:        o.TotalCents,
		RefundedCents:     o.RefundedCents,
		Currency:          cur,
		DiscountCode:      o.DiscountCode.String,
		BillingAddress:    o.BillingAddress,
		ShippingAddress:   o.ShippingAddress.String,
		PaymentMethodID:   o.PaymentMethodId,
		PaymentID:         o.PaymentId.String,
		AssigneeID:        o.AssigneeId.String,
		Notes:             o.Notes.String,
		EstimatedDelivery: o.EstimatedDelivery,
		Milestones:        milestones,
		OrderItems:        []orderitem.OrderItem{}, // populated separately
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		DeliveredAt:       o.DeliveredAt,
	}, nil
}

// OrderDalFromModel converts a service layer Order model to OrderDal.
func OrderDalFromModel(o *order.Order) (*OrderDal, error) {
	milestones, err := json.Marshal(o.Milestones)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal milestones: %w", err)
	}

	return &OrderDal{
		Id:                o.ID,
		OrderNumber:       o.OrderNumber,
		CustomerId:        o.CustomerID,
		Status:            o.Status.String(),
		PaymentStatus:     o.PaymentStatus.String(),
		SubtotalCents:     o.SubtotalCents,
		DiscountCents:     o.DiscountCents,
		TaxCents:          o.TaxCents,
		TotalCents:        o.TotalCents,
		RefundedCents:     o.RefundedCents,
		Currency:          o.Currency.String(),
		DiscountCode:      nullString(o.DiscountCode),
		BillingAddress:    o.BillingAddress,
		ShippingAddress:   nullString(o.ShippingAddress),
		PaymentMethodId:   o.PaymentMethodID,
		PaymentId:         nullString(o.PaymentID),
		AssigneeId:        nullString(o.AssigneeID),
		Notes:             nullString(o.Notes),
		EstimatedDelivery: o.EstimatedDelivery,
		Milestones:        milestones,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		DeliveredAt:       o.DeliveredAt,
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var orderColumns = []string{
	"id",
	"order_number",
	"customer_id",
	"status",
	"payment_status",
	"subtotal_cents",
	"discount_cents",
	"tax_cents",
	"total_cents",
	"refunded_cents",
	"currency",
	"discount_code",
	"billing_address",
	"shipping_address",
	"payment_method_id",
	"payment_id",
	"assignee_id",
	"notes",
	"estimated_delivery",
	"milestones",
	"created_at",
	"updated_at",
	"delivered_at",
}

type PostgresOrderRepository struct {
	conn sqlx.ExtContext
}

func NewPostgresOrderRepository(conn sqlx.ExtContext) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// Insert persists a new order.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	dal, err := OrderDalFromModel(&o)
	if err != nil {
		return order.Order{}, err
	}

	query, args, err := sq.Insert("orders").
		Columns(orderColumns...).
		Values(
			dal.Id,
			dal.OrderNumber,
			dal.CustomerId,
			dal.Status,
			dal.PaymentStatus,
			dal.SubtotalCents,
			dal.DiscountCents,
			dal.TaxCents,
			dal.TotalCents,
			dal.RefundedCents,
			dal.Currency,
			dal.DiscountCode,
			dal.BillingAddress,
			dal.ShippingAddress,
			dal.PaymentMethodId,
			dal.PaymentId,
			dal.AssigneeId,
			dal.Notes,
			dal.EstimatedDelivery,
			dal.Milestones,
			dal.CreatedAt,
			dal.UpdatedAt,
			dal.DeliveredAt,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	return o, nil
}

// Update persists all mutable fields of an existing order.
func (r *PostgresOrderRepository) Update(ctx context.Context, o order.Order) error {
	dal, err := OrderDalFromModel(&o)
	if err != nil {
		return err
	}

	query, args, err := sq.Update("orders").
		Set("status", dal.Status).
		Set("payment_status", dal.PaymentStatus).
		Set("subtotal_cents", dal.SubtotalCents).
		Set("discount_cents", dal.DiscountCents).
		Set("tax_cents", dal.TaxCents).
		Set("total_cents", dal.TotalCents).
		Set("refunded_cents", dal.RefundedCents).
		Set("discount_code", dal.DiscountCode).
		Set("payment_id", dal.PaymentId).
		Set("assignee_id", dal.AssigneeId).
		Set("notes", dal.Notes).
		Set("estimated_delivery", dal.EstimatedDelivery).
		Set("milestones", dal.Milestones).
		Set("updated_at", dal.UpdatedAt).
		Set("delivered_at", dal.DeliveredAt).
		Where(sq.Eq{"id": dal.Id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return order.ErrOrderNotFound
	}

	return nil
}

// GetByID retrieves a single order.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal OrderDal
	if err := sqlx.GetContext(ctx, r.conn, &dal, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}

		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return dal.ToModel()
}

// Query retrieves orders based on filter criteria.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := sq.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if len(filter.Ids) > 0 {
		ids := make([]string, len(filter.Ids))
		for i, id := range filter.Ids {
			ids[i] = id.String()
		}
		builder = builder.Where(sq.Expr("id = ANY(?)", pq.Array(ids)))
	}
	if len(filter.CustomerIds) > 0 {
		builder = builder.Where(sq.Expr("customer_id = ANY(?)", pq.Array(filter.CustomerIds)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = s.String()
		}
		builder = builder.Where(sq.Expr("status = ANY(?)", pq.Array(statuses)))
	}
	if filter.CreatedFrom != nil {
		builder = builder.Where(sq.GtOrEq{"created_at": *filter.CreatedFrom})
	}
	if filter.CreatedTo != nil {
		builder = builder.Where(sq.LtOrEq{"created_at": *filter.CreatedTo})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dals []OrderDal
	if err := sqlx.SelectContext(ctx, r.conn, &dals, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	result := make([]order.Order, 0, len(dals))
	for i := range dals {
		model, err := dals[i].ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	return result, nil
}
