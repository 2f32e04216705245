package payment

import (
	"context"
	"fmt"
	"sync"
)

// MockGateway is a test double that records calls and returns configurable
// results. It also serves as the gateway implementation when the service
// runs with `payment.provider: mock`.
type MockGateway struct {
	mu sync.Mutex

	// Charges maps paymentID -> charged amount in cents.
	Charges map[string]int64
	// Refunds maps refundID -> refunded amount in cents.
	Refunds map[string]int64
	// Recurring maps recurringID -> plan ID.
	Recurring map[string]string

	// Error fields allow tests to inject failures.
	ProcessPaymentErr         error
	ConfirmPaymentErr         error
	ProcessRefundErr          error
	CreateRecurringPaymentErr error
	CancelRecurringPaymentErr error

	nextPaymentSeq   int
	nextRefundSeq    int
	nextRecurringSeq int
}

// NewMockGateway creates a MockGateway ready for use.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		Charges:   make(map[string]int64),
		Refunds:   make(map[string]int64),
		Recurring: make(map[string]string),
	}
}

func (m *MockGateway) ProcessPayment(_ context.Context, req ChargeRequest) (*ChargeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ProcessPaymentErr != nil {
		return nil, m.ProcessPaymentErr
	}

	m.nextPaymentSeq++
	id := fmt.Sprintf("pay_mock_%d", m.nextPaymentSeq)
	m.Charges[id] = req.AmountCents

	return &ChargeResult{PaymentID: id, Status: StatusSucceeded}, nil
}

func (m *MockGateway) ConfirmPayment(_ context.Context, paymentID string) (*ChargeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ConfirmPaymentErr != nil {
		return nil, m.ConfirmPaymentErr
	}

	if _, ok := m.Charges[paymentID]; !ok {
		return nil, &ProviderError{Message: fmt.Sprintf("unknown payment %s", paymentID)}
	}

	return &ChargeResult{PaymentID: paymentID, Status: StatusSucceeded}, nil
}

func (m *MockGateway) ProcessRefund(_ context.Context, req RefundRequest) (*RefundResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ProcessRefundErr != nil {
		return nil, m.ProcessRefundErr
	}

	charged, ok := m.Charges[req.PaymentID]
	if !ok {
		return nil, &ProviderError{Message: fmt.Sprintf("unknown payment %s", req.PaymentID)}
	}

	amount := req.AmountCents
	if amount == 0 {
		amount = charged
	}

	m.nextRefundSeq++
	id := fmt.Sprintf("re_mock_%d", m.nextRefundSeq)
	m.Refunds[id] = amount

	return &RefundResult{RefundID: id, Status: StatusRefunded}, nil
}

func (m *MockGateway) CreateRecurringPayment(_ context.Context, req RecurringRequest) (*RecurringResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateRecurringPaymentErr != nil {
		return nil, m.CreateRecurringPaymentErr
	}

	m.nextRecurringSeq++
	id := fmt.Sprintf("sub_mock_%d", m.nextRecurringSeq)
	m.Recurring[id] = req.PlanID

	return &RecurringResult{RecurringID: id, Status: StatusSucceeded}, nil
}

func (m *MockGateway) CancelRecurringPayment(_ context.Context, recurringID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CancelRecurringPaymentErr != nil {
		return m.CancelRecurringPaymentErr
	}

	if _, ok := m.Recurring[recurringID]; !ok {
		return &ProviderError{Message: fmt.Sprintf("unknown recurring payment %s", recurringID)}
	}
	delete(m.Recurring, recurringID)

	return nil
}

func (m *MockGateway) GetPaymentStatus(_ context.Context, paymentID string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Charges[paymentID]; !ok {
		return "", &ProviderError{Message: fmt.Sprintf("unknown payment %s", paymentID)}
	}

	return StatusSucceeded, nil
}

var _ Gateway = (*MockGateway)(nil)
