package ordersvc

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvenlabs/billing-svc/internal/dal/uow"
	"github.com/arvenlabs/billing-svc/internal/payment"
	"github.com/arvenlabs/billing-svc/internal/service/models/order"
	"github.com/arvenlabs/billing-svc/internal/service/models/orderitem"
)

func newTestService(t *testing.T) (*OrderService, *payment.MockGateway) {
	t.Helper()

	gateway := payment.NewMockGateway()
	svc := MustNewOrderService(
		WithUOWFactory(uow.NewMemoryFactory()),
		WithGateway(gateway),
	)

	return svc, gateway
}

func createOrderModel() order.CreateOrderModel {
	return order.CreateOrderModel{
		CustomerID:      "cust-1",
		PaymentMethodID: "pm-1",
		BillingAddress:  "Calle Mayor 1, Madrid",
		Items: []order.NewOrderItem{
			{ProductID: "web-basic", ProductTitle: "Web Básica", Quantity: 2, UnitPriceCents: 10000, DeliveryEstimate: "5-7 días"},
			{ProductID: "logo", ProductTitle: "Diseño de Logo", Quantity: 1, UnitPriceCents: 5000, DeliveryEstimate: "3 días"},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	model := createOrderModel()
	model.DiscountCode = "SAVE20"

	created, err := svc.CreateOrder(ctx, model)
	require.NoError(t, err)

	assert.Equal(t, "ORD-001000", created.OrderNumber)
	assert.Equal(t, order.StatusPending, created.Status)
	assert.Equal(t, order.PaymentStatusPending, created.PaymentStatus)

	assert.Equal(t, int64(25000), created.SubtotalCents)
	assert.Equal(t, int64(5000), created.DiscountCents)
	assert.Equal(t, int64(4200), created.TaxCents)
	assert.Equal(t, int64(24200), created.TotalCents)

	require.Len(t, created.Milestones, 4)
	assert.Equal(t, order.MilestoneStatusCompleted, created.Milestones[0].Status)

	require.Len(t, created.OrderItems, 2)
	for _, item := range created.OrderItems {
		assert.Equal(t, created.ID, item.OrderID)
		assert.Equal(t, orderitem.ItemStatusPending, item.Status)
	}

	// longest item lead time is 5 days
	wantDelivery := created.CreatedAt.AddDate(0, 0, 5)
	assert.Equal(t, wantDelivery, created.EstimatedDelivery)
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateOrder(context.Background(), order.CreateOrderModel{CustomerID: "cust-1"})
	require.ErrorIs(t, err, order.ErrNoItems)
}

func TestCreateOrderNumbersIncrease(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)
	second, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)
	third, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)

	assert.Equal(t, "ORD-001000", first.OrderNumber)
	assert.Equal(t, "ORD-001001", second.OrderNumber)
	assert.Equal(t, "ORD-001002", third.OrderNumber)
}

func TestUpdateOrderStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)

	confirmed, err := svc.UpdateOrderStatus(ctx, created.ID, order.StatusConfirmed, "", false)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, confirmed.Status)

	inProgress, err := svc.UpdateOrderStatus(ctx, created.ID, order.StatusInProgress, "", false)
	require.NoError(t, err)
	assert.Equal(t, order.StatusInProgress, inProgress.Status)
	assert.Equal(t, order.MilestoneStatusCompleted, inProgress.Milestones[1].Status)
	for _, item := range inProgress.OrderItems {
		assert.Equal(t, orderitem.ItemStatusInProgress, item.Status)
	}

	completed, err := svc.UpdateOrderStatus(ctx, created.ID, order.StatusCompleted, "", false)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, completed.Status)
	require.NotNil(t, completed.DeliveredAt)
	for _, m := range completed.Milestones {
		assert.Equal(t, order.MilestoneStatusCompleted, m.Status)
	}
	for _, item := range completed.OrderItems {
		assert.Equal(t, orderitem.ItemStatusCompleted, item.Status)
	}
}

func TestUpdateOrderStatusRejectsInvalidTransition(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(ctx, created.ID, order.StatusCompleted, "", false)
	var invalid *order.ErrInvalidTransition
	require.ErrorAs(t, err, &invalid)

	// state unchanged after rejection
	orders, err := svc.GetOrders(ctx, &order.QueryOrdersModel{Ids: []uuid.UUID{created.ID}})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.StatusPending, orders[0].Status)
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateOrderStatus(context.Background(), uuid.New(), order.StatusConfirmed, "", false)
	require.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestProcessOrderPayment(t *testing.T) {
	svc, gateway := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)

	paid, err := svc.ProcessOrderPayment(ctx, created.ID, "")
	require.NoError(t, err)

	assert.Equal(t, order.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, order.StatusConfirmed, paid.Status)
	assert.NotEmpty(t, paid.PaymentID)
	assert.Equal(t, created.TotalCents, gateway.Charges[paid.PaymentID])
}

func TestProcessOrderPaymentFailure(t *testing.T) {
	svc, gateway := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)

	gateway.ProcessPaymentErr = &payment.ProviderError{Code: "card_declined", Message: "insufficient funds"}

	_, err = svc.ProcessOrderPayment(ctx, created.ID, "")
	require.Error(t, err)

	orders, err := svc.GetOrders(ctx, &order.QueryOrdersModel{Ids: []uuid.UUID{created.ID}})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	// payment marked failed, fulfillment state untouched
	assert.Equal(t, order.PaymentStatusFailed, orders[0].PaymentStatus)
	assert.Equal(t, order.StatusPending, orders[0].Status)

	// a retry succeeds once the provider recovers
	gateway.ProcessPaymentErr = nil
	paid, err := svc.ProcessOrderPayment(ctx, created.ID, "")
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusPaid, paid.PaymentStatus)
}

func TestProcessOrderRefundRequiresPaid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)

	_, err = svc.ProcessOrderRefund(ctx, created.ID, 0, "cliente insatisfecho")
	require.ErrorIs(t, err, order.ErrOrderNotPaid)
}

func TestProcessOrderRefundFull(t *testing.T) {
	svc, gateway := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)
	_, err = svc.ProcessOrderPayment(ctx, created.ID, "")
	require.NoError(t, err)

	refunded, err := svc.ProcessOrderRefund(ctx, created.ID, 0, "cancelado por el cliente")
	require.NoError(t, err)

	assert.Equal(t, order.PaymentStatusRefunded, refunded.PaymentStatus)
	assert.Equal(t, order.StatusCancelled, refunded.Status)
	assert.Equal(t, refunded.TotalCents, refunded.RefundedCents)
	for _, item := range refunded.OrderItems {
		assert.Equal(t, orderitem.ItemStatusCancelled, item.Status)
	}
	require.Len(t, gateway.Refunds, 1)
}

func TestProcessOrderRefundPartial(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)
	_, err = svc.ProcessOrderPayment(ctx, created.ID, "")
	require.NoError(t, err)

	refunded, err := svc.ProcessOrderRefund(ctx, created.ID, 5000, "descuento posterior")
	require.NoError(t, err)

	assert.Equal(t, order.PaymentStatusPartiallyRefunded, refunded.PaymentStatus)
	assert.Equal(t, order.StatusCancelled, refunded.Status)
	assert.Equal(t, int64(5000), refunded.RefundedCents)
}

func TestAssignOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)

	require.NoError(t, svc.AssignOrder(ctx, created.ID, "dev-42"))

	orders, err := svc.GetOrders(ctx, &order.QueryOrdersModel{Ids: []uuid.UUID{created.ID}})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "dev-42", orders[0].AssigneeID)
}

func TestUpdateOrderMilestone(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)

	target := created.Milestones[2]
	err = svc.UpdateOrderMilestone(ctx, created.ID, target.ID, order.MilestoneStatusCompleted, []string{"mockups.pdf"})
	require.NoError(t, err)

	orders, err := svc.GetOrders(ctx, &order.QueryOrdersModel{Ids: []uuid.UUID{created.ID}})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	got := orders[0].Milestones[2]
	assert.Equal(t, order.MilestoneStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, []string{"mockups.pdf"}, got.Deliverables)

	err = svc.UpdateOrderMilestone(ctx, created.ID, uuid.New(), order.MilestoneStatusCompleted, nil)
	require.ErrorIs(t, err, order.ErrMilestoneNotFound)
}

func TestGetOrdersFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)

	other := createOrderModel()
	other.CustomerID = "cust-2"
	_, err = svc.CreateOrder(ctx, other)
	require.NoError(t, err)

	byCustomer, err := svc.GetOrders(ctx, &order.QueryOrdersModel{CustomerIds: []string{"cust-1"}})
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, first.ID, byCustomer[0].ID)
	require.Len(t, byCustomer[0].OrderItems, 2)

	all, err := svc.GetOrders(ctx, &order.QueryOrdersModel{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := svc.GetOrders(ctx, &order.QueryOrdersModel{CustomerIds: []string{"cust-3"}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetOrderStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	paidOrder, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)
	_, err = svc.ProcessOrderPayment(ctx, paidOrder.ID, "")
	require.NoError(t, err)

	_, err = svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)

	refundedOrder, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)
	_, err = svc.ProcessOrderPayment(ctx, refundedOrder.ID, "")
	require.NoError(t, err)
	_, err = svc.ProcessOrderRefund(ctx, refundedOrder.ID, 4200, "ajuste")
	require.NoError(t, err)

	stats, err := svc.GetOrderStats(ctx, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 1, stats.ByStatus[order.StatusPending])
	assert.Equal(t, 1, stats.ByStatus[order.StatusConfirmed])
	assert.Equal(t, 1, stats.ByStatus[order.StatusCancelled])
	assert.Equal(t, 1, stats.ByPaymentStatus[order.PaymentStatusPaid])
	assert.Equal(t, 1, stats.ByPaymentStatus[order.PaymentStatusPartiallyRefunded])

	// two paid totals of 30250 each, minus the 4200 refund
	assert.Equal(t, int64(2*30250-4200), stats.RevenueCents)
	assert.Equal(t, int64(4200), stats.RefundedCents)

	require.NotEmpty(t, stats.TopProducts)
	assert.Equal(t, "web-basic", stats.TopProducts[0].ProductID)
}

func TestGetOrderStatsDateRange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)

	from := created.CreatedAt.Add(-time.Minute)
	to := created.CreatedAt.Add(time.Minute)

	inRange, err := svc.GetOrderStats(ctx, &from, &to)
	require.NoError(t, err)
	assert.Equal(t, 2, inRange.TotalOrders)

	past := created.CreatedAt.Add(-time.Hour)
	before, err := svc.GetOrderStats(ctx, nil, &past)
	require.NoError(t, err)
	assert.Zero(t, before.TotalOrders)

	after, err := svc.GetOrderStats(ctx, &to, nil)
	require.NoError(t, err)
	assert.Zero(t, after.TotalOrders)
}

func TestConcurrentStatusUpdatesSerialize(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, createOrderModel())
	require.NoError(t, err)

	done := make(chan error, 2)
	go func() {
		_, err := svc.UpdateOrderStatus(ctx, created.ID, order.StatusConfirmed, "", false)
		done <- err
	}()
	go func() {
		_, err := svc.UpdateOrderStatus(ctx, created.ID, order.StatusCancelled, "", false)
		done <- err
	}()

	var failures int
	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			if err != nil {
				failures++
			}
		case <-time.After(5 * time.Second):
			t.Fatal("status update did not finish")
		}
	}

	// both may succeed (confirmed then cancelled) but never both as first
	// transition from pending with a corrupted end state
	orders, err := svc.GetOrders(ctx, &order.QueryOrdersModel{Ids: []uuid.UUID{created.ID}})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Contains(t, []order.Status{order.StatusConfirmed, order.StatusCancelled}, orders[0].Status)
}
