package order

import (
	"database/sql/driver"
	"fmt"
)

// Status is the order fulfillment lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus is the payment lifecycle state, orthogonal to Status.
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusProcessing        PaymentStatus = "processing"
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

// ErrInvalidTransition reports a rejected state transition.
type ErrInvalidTransition struct {
	From, To string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.From, e.To)
}

// statusTransitions is the closed transition table for Status.
// completed and cancelled are terminal.
var statusTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// paymentTransitions is the closed transition table for PaymentStatus.
// failed is not terminal: a later payment attempt may still succeed.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:           {PaymentStatusProcessing, PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusProcessing:        {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusFailed:            {PaymentStatusProcessing, PaymentStatusPaid},
	PaymentStatusPaid:              {PaymentStatusRefunded, PaymentStatusPartiallyRefunded},
	PaymentStatusRefunded:          {},
	PaymentStatusPartiallyRefunded: {},
}

func (s Status) String() string { return string(s) }

func (s Status) Value() (driver.Value, error) { return s.String(), nil }

// IsTerminal reports whether no further lifecycle transitions are possible.
func (s Status) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// CanTransition reports whether the lifecycle may move from s to target.
func (s Status) CanTransition(target Status) bool {
	for _, next := range statusTransitions[s] {
		if next == target {
			return true
		}
	}

	return false
}

// Transition validates and returns the target status.
func (s Status) Transition(target Status) (Status, error) {
	if !s.CanTransition(target) {
		return s, &ErrInvalidTransition{From: s.String(), To: target.String()}
	}

	return target, nil
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("invalid order status %q", s)
	}
}

func (s PaymentStatus) String() string { return string(s) }

func (s PaymentStatus) Value() (driver.Value, error) { return s.String(), nil }

// CanTransition reports whether the payment state may move from s to target.
func (s PaymentStatus) CanTransition(target PaymentStatus) bool {
	for _, next := range paymentTransitions[s] {
		if next == target {
			return true
		}
	}

	return false
}

// Transition validates and returns the target payment status.
func (s PaymentStatus) Transition(target PaymentStatus) (PaymentStatus, error) {
	if !s.CanTransition(target) {
		return s, &ErrInvalidTransition{From: s.String(), To: target.String()}
	}

	return target, nil
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusPaid,
		PaymentStatusFailed, PaymentStatusRefunded, PaymentStatusPartiallyRefunded:
		return PaymentStatus(s), nil
	default:
		return "", fmt.Errorf("invalid payment status %q", s)
	}
}
