package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/arvenlabs/billing-svc/internal/service/models/currency"
	"github.com/arvenlabs/billing-svc/internal/service/models/subscription"
)

// SubscriptionDal represents the subscription data access layer model.
type SubscriptionDal struct {
	Id                     uuid.UUID      `db:"id"`
	CustomerId             string         `db:"customer_id"`
	PlanId                 string         `db:"plan_id"`
	PlanName               string         `db:"plan_name"`
	BillingCycle           string         `db:"billing_cycle"`
	PriceCents             int64          `db:"price_cents"`
	Currency               string         `db:"currency"`
	Status                 string         `db:"status"`
	AutoRenew              bool           `db:"auto_renew"`
	PaymentMethodId        string         `db:"payment_method_id"`
	ProviderSubscriptionId sql.NullString `db:"provider_subscription_id"`
	CouponCode             sql.NullString `db:"coupon_code"`
	CancelReason           sql.NullString `db:"cancel_reason"`
	StartDate              time.Time      `db:"start_date"`
	NextBillingDate        time.Time      `db:"next_billing_date"`
	TrialEndDate           *time.Time     `db:"trial_end_date"`
	PausedAt               *time.Time     `db:"paused_at"`
	CancelledAt            *time.Time     `db:"cancelled_at"`
	EndDate                *time.Time     `db:"end_date"`
	CreatedAt              time.Time      `db:"created_at"`
	UpdatedAt              time.Time      `db:"updated_at"`
}

// ToModel converts SubscriptionDal to the service layer model.
func (d *SubscriptionDal) ToModel() (*subscription.Subscription, error) {
	cur, err := currency.ParseCurrency(d.Currency)
	if err != nil {
		return nil, err
	}
	status, err := subscription.ParseStatus(d.Status)
	if err != nil {
		return nil, err
	}
	cycle, err := subscription.ParseBillingCycle(d.BillingCycle)
	if err != nil {
		return nil, err
	}

	return &subscription.Subscription{
		ID:                     d.Id,
		CustomerID:             d.CustomerId,
		PlanID:                 d.PlanId,
		PlanName:               d.PlanName,
		BillingCycle:           cycle,
		PriceCents:             d.PriceCents,
		Currency:               cur,
		Status:                 status,
		AutoRenew:              d.AutoRenew,
		PaymentMethodID:        d.PaymentMethodId,
		ProviderSubscriptionID: d.ProviderSubscriptionId.String,
		CouponCode:             d.CouponCode.String,
		CancelReason:           d.CancelReason.String,
		StartDate:              d.StartDate,
		NextBillingDate:        d.NextBillingDate,
		TrialEndDate:           d.TrialEndDate,
		PausedAt:               d.PausedAt,
		CancelledAt:            d.CancelledAt,
		EndDate:                d.EndDate,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}, nil
}

// SubscriptionDalFromModel converts the service layer model to SubscriptionDal.
func SubscriptionDalFromModel(s *subscription.Subscription) *SubscriptionDal {
	return &SubscriptionDal{
		Id:                     s.ID,
		CustomerId:             s.CustomerID,
		PlanId:                 s.PlanID,
		PlanName:               s.PlanName,
		BillingCycle:           s.BillingCycle.String(),
		PriceCents:             s.PriceCents,
		Currency:               s.Currency.String(),
		Status:                 s.Status.String(),
		AutoRenew:              s.AutoRenew,
		PaymentMethodId:        s.PaymentMethodID,
		ProviderSubscriptionId: nullString(s.ProviderSubscriptionID),
		CouponCode:             nullString(s.CouponCode),
		CancelReason:           nullString(s.CancelReason),
		StartDate:              s.StartDate,
		NextBillingDate:        s.NextBillingDate,
		TrialEndDate:           s.TrialEndDate,
		PausedAt:               s.PausedAt,
		CancelledAt:            s.CancelledAt,
		EndDate:                s.EndDate,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var subscriptionColumns = []string{
	"id",
	"customer_id",
	"plan_id",
	"plan_name",
	"billing_cycle",
	"price_cents",
	"currency",
	"status",
	"auto_renew",
	"payment_method_id",
	"provider_subscription_id",
	"coupon_code",
	"cancel_reason",
	"start_date",
	"next_billing_date",
	"trial_end_date",
	"paused_at",
	"cancelled_at",
	"end_date",
	"created_at",
	"updated_at",
}

type PostgresSubscriptionRepository struct {
	conn sqlx.ExtContext
}

func NewPostgresSubscriptionRepository(conn sqlx.ExtContext) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{
		conn: conn,
	}
}

// Insert persists a new subscription.
func (r *PostgresSubscriptionRepository) Insert(ctx context.Context, sub subscription.Subscription) (subscription.Subscription, error) {
	dal := SubscriptionDalFromModel(&sub)

	query, args, err := sq.Insert("subscriptions").
		Columns(subscriptionColumns...).
		Values(
			dal.Id,
			dal.CustomerId,
			dal.PlanId,
			dal.PlanName,
			dal.BillingCycle,
			dal.PriceCents,
			dal.Currency,
			dal.Status,
			dal.AutoRenew,
			dal.PaymentMethodId,
			dal.ProviderSubscriptionId,
			dal.CouponCode,
			dal.CancelReason,
			dal.StartDate,
			dal.NextBillingDate,
			dal.TrialEndDate,
			dal.PausedAt,
			dal.CancelledAt,
			dal.EndDate,
			dal.CreatedAt,
			dal.UpdatedAt,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return subscription.Subscription{}, fmt.Errorf("failed to insert subscription: %w", err)
	}

	return sub, nil
}

// Update persists all mutable fields of an existing subscription.
func (r *PostgresSubscriptionRepository) Update(ctx context.Context, sub subscription.Subscription) error {
	dal := SubscriptionDalFromModel(&sub)

	query, args, err := sq.Update("subscriptions").
		Set("plan_id", dal.PlanId).
		Set("plan_name", dal.PlanName).
		Set("billing_cycle", dal.BillingCycle).
		Set("price_cents", dal.PriceCents).
		Set("status", dal.Status).
		Set("auto_renew", dal.AutoRenew).
		Set("payment_method_id", dal.PaymentMethodId).
		Set("provider_subscription_id", dal.ProviderSubscriptionId).
		Set("cancel_reason", dal.CancelReason).
		Set("next_billing_date", dal.NextBillingDate).
		Set("trial_end_date", dal.TrialEndDate).
		Set("paused_at", dal.PausedAt).
		Set("cancelled_at", dal.CancelledAt).
		Set("end_date", dal.EndDate).
		Set("updated_at", dal.UpdatedAt).
		Where(sq.Eq{"id": dal.Id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return subscription.ErrSubscriptionNotFound
	}

	return nil
}

// GetByID retrieves a single subscription.
func (r *PostgresSubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

// GetByProviderID retrieves the subscription holding the given provider
// subscription identifier.
func (r *PostgresSubscriptionRepository) GetByProviderID(ctx context.Context, providerID string) (*subscription.Subscription, error) {
	return r.getOne(ctx, sq.Eq{"provider_subscription_id": providerID})
}

func (r *PostgresSubscriptionRepository) getOne(ctx context.Context, cond sq.Eq) (*subscription.Subscription, error) {
	query, args, err := sq.Select(subscriptionColumns...).
		From("subscriptions").
		Where(cond).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal SubscriptionDal
	if err := sqlx.GetContext(ctx, r.conn, &dal, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, subscription.ErrSubscriptionNotFound
		}

		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return dal.ToModel()
}

// Query retrieves subscriptions based on filter criteria.
func (r *PostgresSubscriptionRepository) Query(ctx context.Context, filter *subscription.QuerySubscriptionsModel) ([]subscription.Subscription, error) {
	builder := sq.Select(subscriptionColumns...).
		From("subscriptions").
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
	if filter.DueBefore != nil {
		builder = builder.Where(sq.LtOrEq{"next_billing_date": *filter.DueBefore})
	}
	if filter.AutoRenewOnly {
		builder = builder.Where(sq.Eq{"auto_renew": true})
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

	var dals []SubscriptionDal
	if err := sqlx.SelectContext(ctx, r.conn, &dals, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}

	result := make([]subscription.Subscription, 0, len(dals))
	for i := range dals {
		model, err := dals[i].ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert subscription dal to model: %w", err)
		}
		result = append(result, *model)
	}

	return result, nil
}
