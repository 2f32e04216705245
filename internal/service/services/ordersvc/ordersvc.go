package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/arvenlabs/billing-svc/internal/dal/uow"
	"github.com/arvenlabs/billing-svc/internal/payment"
	"github.com/arvenlabs/billing-svc/internal/service/models/currency"
	"github.com/arvenlabs/billing-svc/internal/service/models/event"
	"github.com/arvenlabs/billing-svc/internal/service/models/order"
	"github.com/arvenlabs/billing-svc/internal/service/models/orderitem"
	"github.com/arvenlabs/billing-svc/pkg/kmutex"
)

// orderNumberSeed is the process-lifetime counter start. The first order in
// a process gets "ORD-001000".
const orderNumberSeed = 1000

const defaultProviderTimeout = 30 * time.Second

// topProductsLimit caps the TopProducts list in order stats.
const topProductsLimit = 5

// OrderService owns order records, their state machines and milestone
// scheduling, and orchestrates payment-provider calls on transitions.
// Mutations to one order are serialized through a per-order lock.
type OrderService struct {
	factory         uow.Factory
	gateway         payment.Gateway
	locks           *kmutex.KeyedMutex
	orderSeq        atomic.Int64
	providerTimeout time.Duration
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		locks:           kmutex.New(),
		providerTimeout: defaultProviderTimeout,
	}
	s.orderSeq.Store(orderNumberSeed - 1)

	for _, opt := range opts {
		opt(s)
	}

	if s.factory == nil {
		panic("ordersvc: unit of work factory is required")
	}
	if s.gateway == nil {
		panic("ordersvc: payment gateway is required")
	}

	return s
}

// WithUOWFactory sets the unit of work factory for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUOWFactory(factory uow.Factory) option {
	return func(s *OrderService) {
		s.factory = factory
	}
}

// WithGateway sets the payment gateway for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithGateway(gateway payment.Gateway) option {
	return func(s *OrderService) {
		s.gateway = gateway
	}
}

// WithProviderTimeout sets the timeout applied to payment-provider calls.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProviderTimeout(timeout time.Duration) option {
	return func(s *OrderService) {
		s.providerTimeout = timeout
	}
}

// CreateOrder computes money fields, delivery estimate and milestones for a
// new order and persists it together with its items and creation event.
func (s *OrderService) CreateOrder(ctx context.Context, model order.CreateOrderModel) (*order.Order, error) {
	if len(model.Items) == 0 {
		return nil, order.ErrNoItems
	}

	now := time.Now()
	cur := model.Currency
	if cur == "" {
		cur = currency.CurrencyEUR
	}

	orderID := uuid.New()
	items := make([]orderitem.OrderItem, 0, len(model.Items))
	for _, item := range model.Items {
		items = append(items, orderitem.OrderItem{
			ID:               uuid.New(),
			OrderID:          orderID,
			ProductID:        item.ProductID,
			ProductTitle:     item.ProductTitle,
			Quantity:         item.Quantity,
			UnitPriceCents:   item.UnitPriceCents,
			PriceCurrency:    cur,
			DeliveryEstimate: item.DeliveryEstimate,
			Status:           orderitem.ItemStatusPending,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}

	estimatedDelivery := order.EstimateDelivery(items, now)

	o := order.Order{
		ID:                orderID,
		OrderNumber:       order.FormatOrderNumber(s.orderSeq.Add(1)),
		CustomerID:        model.CustomerID,
		Status:            order.StatusPending,
		PaymentStatus:     order.PaymentStatusPending,
		Currency:          cur,
		DiscountCode:      model.DiscountCode,
		BillingAddress:    model.BillingAddress,
		ShippingAddress:   model.ShippingAddress,
		PaymentMethodID:   model.PaymentMethodID,
		Notes:             model.Notes,
		EstimatedDelivery: estimatedDelivery,
		Milestones:        order.DefaultMilestones(now, estimatedDelivery),
		OrderItems:        items,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	o.ComputeTotals()

	work := s.factory.New()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = work.Rollback() }()

	inserted, err := work.Orders().Insert(ctx, o)
	if err != nil {
		return nil, err
	}
	if _, err := work.OrderItems().BulkInsert(ctx, o.OrderItems); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, work, event.OrderCreated, inserted)

	if err := work.Commit(); err != nil {
		return nil, err
	}

	return &inserted, nil
}

// UpdateOrderStatus transitions the fulfillment lifecycle and applies the
// milestone side effects of the target state.
func (s *OrderService) UpdateOrderStatus(
	ctx context.Context,
	orderID uuid.UUID,
	status order.Status,
	notes string,
	notifyCustomer bool,
) (*order.Order, error) {
	s.locks.Lock(orderID.String())
	defer s.locks.Unlock(orderID.String())

	o, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	newStatus, err := o.Status.Transition(status)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	o.Status = newStatus
	if notes != "" {
		o.Notes = notes
	}

	switch newStatus {
	case order.StatusConfirmed:
		o.EstimatedDelivery = order.EstimateDelivery(o.OrderItems, now)
	case order.StatusInProgress:
		o.CompleteMilestone(order.MilestoneWorkStarted, now)
		s.setItemStatuses(o, orderitem.ItemStatusInProgress, now)
	case order.StatusCompleted:
		o.CompleteAllMilestones(now)
		o.DeliveredAt = &now
		s.setItemStatuses(o, orderitem.ItemStatusCompleted, now)
	case order.StatusCancelled:
		s.setItemStatuses(o, orderitem.ItemStatusCancelled, now)
	}
	o.UpdatedAt = now

	if err := s.saveOrder(ctx, o, event.OrderStatusChanged, notifyCustomer); err != nil {
		return nil, err
	}

	return o, nil
}

// ProcessOrderPayment charges the order total through the payment gateway.
// On success the order is paid and confirmed; on failure the payment status
// is recorded as failed and the lifecycle state is left untouched. There is
// no automatic retry: callers re-invoke after a failure.
func (s *OrderService) ProcessOrderPayment(ctx context.Context, orderID uuid.UUID, paymentMethodID string) (*order.Order, error) {
	s.locks.Lock(orderID.String())
	defer s.locks.Unlock(orderID.String())

	o, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if paymentMethodID == "" {
		paymentMethodID = o.PaymentMethodID
	}

	callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	result, err := s.gateway.ProcessPayment(callCtx, payment.ChargeRequest{
		AmountCents:     o.TotalCents,
		Currency:        o.Currency,
		CustomerID:      o.CustomerID,
		PaymentMethodID: paymentMethodID,
		BillingAddress:  o.BillingAddress,
		Description:     "Pedido " + o.OrderNumber,
		Metadata: map[string]string{
			"order_id":     o.ID.String(),
			"order_number": o.OrderNumber,
		},
	})
	if err != nil || result.Status != payment.StatusSucceeded {
		o.PaymentStatus = order.PaymentStatusFailed
		o.UpdatedAt = time.Now()
		if saveErr := s.saveOrder(ctx, o, event.OrderPaymentProcessed, false); saveErr != nil {
			slog.Error("Failed to record payment failure", "order_id", o.ID, "error", saveErr)
		}
		if err == nil {
			err = fmt.Errorf("process payment: %w", &payment.ProviderError{
				Message: fmt.Sprintf("charge finished with status %q", result.Status),
			})
		}

		return nil, err
	}

	now := time.Now()
	o.PaymentStatus = order.PaymentStatusPaid
	o.PaymentID = result.PaymentID
	if o.Status == order.StatusPending {
		o.Status = order.StatusConfirmed
	}
	o.UpdatedAt = now

	if err := s.saveOrder(ctx, o, event.OrderPaymentProcessed, true); err != nil {
		return nil, err
	}

	return o, nil
}

// ProcessOrderRefund refunds a paid order, partially when amountCents is
// below the total, and cancels the fulfillment lifecycle.
func (s *OrderService) ProcessOrderRefund(ctx context.Context, orderID uuid.UUID, amountCents int64, reason string) (*order.Order, error) {
	s.locks.Lock(orderID.String())
	defer s.locks.Unlock(orderID.String())

	o, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.PaymentStatus != order.PaymentStatusPaid {
		return nil, order.ErrOrderNotPaid
	}

	callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	result, err := s.gateway.ProcessRefund(callCtx, payment.RefundRequest{
		PaymentID:   o.PaymentID,
		AmountCents: amountCents,
		Reason:      reason,
	})
	if err != nil {
		return nil, fmt.Errorf("process refund: %w", err)
	}

	now := time.Now()
	if amountCents > 0 && amountCents < o.TotalCents {
		o.PaymentStatus = order.PaymentStatusPartiallyRefunded
		o.RefundedCents = amountCents
	} else {
		o.PaymentStatus = order.PaymentStatusRefunded
		o.RefundedCents = o.TotalCents
	}
	// A refund retires the order regardless of how far fulfillment got.
	if o.Status != order.StatusCancelled {
		o.Status = order.StatusCancelled
		s.setItemStatuses(o, orderitem.ItemStatusCancelled, now)
	}
	o.UpdatedAt = now

	slog.Info("Order refunded",
		"order_id", o.ID,
		"refund_id", result.RefundID,
		"amount_cents", o.RefundedCents,
	)

	if err := s.saveOrder(ctx, o, event.OrderRefunded, true); err != nil {
		return nil, err
	}

	return o, nil
}

// AssignOrder sets the team member responsible for the order.
func (s *OrderService) AssignOrder(ctx context.Context, orderID uuid.UUID, assigneeID string) error {
	s.locks.Lock(orderID.String())
	defer s.locks.Unlock(orderID.String())

	o, err := s.getOrder(ctx, orderID)
	if err != nil {
		return err
	}

	o.AssigneeID = assigneeID
	o.UpdatedAt = time.Now()

	return s.saveOrder(ctx, o, "", false)
}

// UpdateOrderMilestone mutates a single milestone's status and deliverables.
func (s *OrderService) UpdateOrderMilestone(
	ctx context.Context,
	orderID uuid.UUID,
	milestoneID uuid.UUID,
	status order.MilestoneStatus,
	deliverables []string,
) error {
	s.locks.Lock(orderID.String())
	defer s.locks.Unlock(orderID.String())

	o, err := s.getOrder(ctx, orderID)
	if err != nil {
		return err
	}

	now := time.Now()
	found := false
	for i := range o.Milestones {
		if o.Milestones[i].ID != milestoneID {
			continue
		}
		o.Milestones[i].Status = status
		if status == order.MilestoneStatusCompleted {
			o.Milestones[i].CompletedAt = &now
		} else {
			o.Milestones[i].CompletedAt = nil
		}
		if deliverables != nil {
			o.Milestones[i].Deliverables = deliverables
		}
		found = true

		break
	}
	if !found {
		return order.ErrMilestoneNotFound
	}

	o.UpdatedAt = now

	return s.saveOrder(ctx, o, "", false)
}

// GetOrders retrieves orders with their items based on filter.
func (s *OrderService) GetOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	work := s.factory.New()

	orders, err := work.Orders().Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderIDs := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}

	items, err := work.OrderItems().QueryByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].ID {
				orders[i].OrderItems = append(orders[i].OrderItems, item)
			}
		}
	}

	return orders, nil
}

// GetOrderStats aggregates counts, revenue and top-selling products across
// orders created within the optional date range. Revenue counts money
// actually collected: paid totals minus refunded amounts.
func (s *OrderService) GetOrderStats(ctx context.Context, dateFrom, dateTo *time.Time) (*order.Stats, error) {
	orders, err := s.GetOrders(ctx, &order.QueryOrdersModel{
		CreatedFrom: dateFrom,
		CreatedTo:   dateTo,
	})
	if err != nil {
		return nil, err
	}

	stats := order.Stats{
		TotalOrders:     len(orders),
		ByStatus:        map[order.Status]int{},
		ByPaymentStatus: map[order.PaymentStatus]int{},
	}
	productRevenue := map[string]*order.ProductRevenue{}

	for i := range orders {
		o := &orders[i]
		stats.ByStatus[o.Status]++
		stats.ByPaymentStatus[o.PaymentStatus]++

		switch o.PaymentStatus {
		case order.PaymentStatusPaid, order.PaymentStatusPartiallyRefunded, order.PaymentStatusRefunded:
			stats.RevenueCents += o.TotalCents - o.RefundedCents
			stats.RefundedCents += o.RefundedCents
		default:
			continue
		}

		for _, item := range o.OrderItems {
			pr, ok := productRevenue[item.ProductID]
			if !ok {
				pr = &order.ProductRevenue{ProductID: item.ProductID, ProductTitle: item.ProductTitle}
				productRevenue[item.ProductID] = pr
			}
			pr.Quantity += item.Quantity
			pr.RevenueCents += item.TotalCents
		}
	}

	top := make([]order.ProductRevenue, 0, len(productRevenue))
	for _, pr := range productRevenue {
		top = append(top, *pr)
	}
	sort.Slice(top, func(i, j int) bool { return top[i].RevenueCents > top[j].RevenueCents })
	if len(top) > topProductsLimit {
		top = top[:topProductsLimit]
	}
	stats.TopProducts = top

	return &stats, nil
}

// getOrder loads one order with its items.
func (s *OrderService) getOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	work := s.factory.New()

	o, err := work.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := work.OrderItems().QueryByOrderIDs(ctx, []uuid.UUID{orderID})
	if err != nil {
		return nil, err
	}
	o.OrderItems = items

	return o, nil
}

// saveOrder persists the order, its item statuses and an optional event in
// one transaction.
func (s *OrderService) saveOrder(ctx context.Context, o *order.Order, eventType string, notifyCustomer bool) error {
	work := s.factory.New()
	if err := work.Begin(ctx); err != nil {
		return err
	}
	defer func() { _ = work.Rollback() }()

	if err := work.Orders().Update(ctx, *o); err != nil {
		return err
	}
	for _, item := range o.OrderItems {
		if err := work.OrderItems().Update(ctx, item); err != nil {
			return err
		}
	}

	if eventType != "" {
		s.publishEvent(ctx, work, eventType, o)
	}
	if notifyCustomer {
		s.publishEvent(ctx, work, event.CustomerNotified, map[string]string{
			"customerId":  o.CustomerID,
			"orderNumber": o.OrderNumber,
			"status":      o.Status.String(),
		})
	}

	return work.Commit()
}

// publishEvent queues a domain event on the outbox. Event loss is logged,
// never propagated: analytics must not block the transaction.
func (s *OrderService) publishEvent(ctx context.Context, work uow.UnitOfWork, eventType string, payload any) {
	msg, err := event.NewMessage(eventType, payload)
	if err != nil {
		slog.Warn("Failed to build event", "type", eventType, "error", err)

		return
	}
	if err := work.Outbox().Insert(ctx, msg); err != nil {
		slog.Warn("Failed to queue event", "type", eventType, "error", err)
	}
}

func (s *OrderService) setItemStatuses(o *order.Order, status orderitem.ItemStatus, at time.Time) {
	for i := range o.OrderItems {
		o.OrderItems[i].Status = status
		o.OrderItems[i].UpdatedAt = at
	}
}
