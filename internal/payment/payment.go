package payment

import (
	"context"
	"fmt"

	"github.com/arvenlabs/billing-svc/internal/service/models/currency"
)

// Gateway abstracts over third-party payment processors. Implementations
// normalize provider-specific status vocabularies into Status via
// ParseProviderStatus so call sites never see raw provider strings.
type Gateway interface {
	// ProcessPayment charges the given amount and returns the provider's
	// payment identifier and normalized status.
	ProcessPayment(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	// ConfirmPayment confirms a previously initiated payment.
	ConfirmPayment(ctx context.Context, paymentID string) (*ChargeResult, error)
	// ProcessRefund refunds a payment, fully when AmountCents is zero.
	ProcessRefund(ctx context.Context, req RefundRequest) (*RefundResult, error)
	// CreateRecurringPayment starts a recurring charge for a plan.
	CreateRecurringPayment(ctx context.Context, req RecurringRequest) (*RecurringResult, error)
	// CancelRecurringPayment stops a recurring charge.
	CancelRecurringPayment(ctx context.Context, recurringID string) error
	// GetPaymentStatus fetches the current normalized status of a payment.
	GetPaymentStatus(ctx context.Context, paymentID string) (Status, error)
}

// Status is the provider-agnostic payment status vocabulary.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
	StatusCanceled   Status = "canceled"
)

// ParseProviderStatus maps provider status vocabularies onto Status. The
// mapping lives here, once, so that new providers extend this table instead
// of scattering translations across call sites.
func ParseProviderStatus(s string) Status {
	switch s {
	case "succeeded", "paid", "completed", "COMPLETED", "CAPTURED":
		return StatusSucceeded
	case "processing", "requires_action", "requires_confirmation", "in_progress":
		return StatusProcessing
	case "pending", "created", "requires_capture", "APPROVED":
		return StatusPending
	case "refunded", "REFUNDED":
		return StatusRefunded
	case "canceled", "cancelled", "VOIDED":
		return StatusCanceled
	default:
		return StatusFailed
	}
}

// ChargeRequest describes a one-time charge.
type ChargeRequest struct {
	AmountCents     int64
	Currency        currency.Currency
	CustomerID      string
	PaymentMethodID string
	BillingAddress  string
	Description     string
	Metadata        map[string]string
}

// ChargeResult is the normalized outcome of a charge or confirmation.
type ChargeResult struct {
	PaymentID string
	Status    Status
}

// RefundRequest describes a full or partial refund of a payment.
type RefundRequest struct {
	PaymentID   string
	AmountCents int64 // 0 means full refund
	Reason      string
}

// RefundResult is the normalized outcome of a refund.
type RefundResult struct {
	RefundID string
	Status   Status
}

// RecurringRequest describes a recurring charge to set up.
type RecurringRequest struct {
	CustomerID      string
	PaymentMethodID string
	PlanID          string
	PriceCents      int64
	Currency        currency.Currency
	Yearly          bool
	Metadata        map[string]string
}

// RecurringResult is the normalized outcome of setting up a recurring charge.
type RecurringResult struct {
	RecurringID string
	Status      Status
}

// ProviderError surfaces a failure reported by the payment provider.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("payment provider error: %s", e.Message)
	}

	return fmt.Sprintf("payment provider error [%s]: %s", e.Code, e.Message)
}
