package subscription

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/arvenlabs/billing-svc/internal/service/models/currency"
	"github.com/google/uuid"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNotActive            = errors.New("subscription is not active")
	ErrBillingInProgress    = errors.New("billing already in progress for this period")
)

// Status is the subscription lifecycle state. A trial is represented as
// active with a populated TrialEndDate, not as a distinct status value.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// ErrInvalidTransition reports a rejected state transition.
type ErrInvalidTransition struct {
	From, To string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.From, e.To)
}

// statusTransitions is the closed transition table. cancelled and expired
// are terminal; a paused subscription may still be cancelled.
var statusTransitions = map[Status][]Status{
	StatusActive:    {StatusPaused, StatusCancelled, StatusExpired},
	StatusPaused:    {StatusActive, StatusCancelled},
	StatusCancelled: {},
	StatusExpired:   {},
}

func (s Status) String() string { return string(s) }

func (s Status) Value() (driver.Value, error) { return s.String(), nil }

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
	case StatusActive, StatusPaused, StatusCancelled, StatusExpired:
		return Status(s), nil
	default:
		return "", fmt.Errorf("invalid subscription status %q", s)
	}
}

// Subscription is a recurring billing record tied to a maintenance plan.
type Subscription struct {
	ID                     uuid.UUID         `json:"id"`
	CustomerID             string            `json:"customerId"`
	PlanID                 string            `json:"planId"`
	PlanName               string            `json:"planName"`
	BillingCycle           BillingCycle      `json:"billingCycle"`
	PriceCents             int64             `json:"priceCents"`
	Currency               currency.Currency `json:"currency"`
	Status                 Status            `json:"status"`
	AutoRenew              bool              `json:"autoRenew"`
	PaymentMethodID        string            `json:"paymentMethodId"`
	ProviderSubscriptionID string            `json:"providerSubscriptionId,omitempty"`
	CouponCode             string            `json:"couponCode,omitempty"`
	CancelReason           string            `json:"cancelReason,omitempty"`
	StartDate              time.Time         `json:"startDate"`
	NextBillingDate        time.Time         `json:"nextBillingDate"`
	TrialEndDate           *time.Time        `json:"trialEndDate,omitempty"`
	PausedAt               *time.Time        `json:"pausedAt,omitempty"`
	CancelledAt            *time.Time        `json:"cancelledAt,omitempty"`
	EndDate                *time.Time        `json:"endDate,omitempty"`
	CreatedAt              time.Time         `json:"createdAt"`
	UpdatedAt              time.Time         `json:"updatedAt"`
}

// InTrial reports whether the subscription is inside its trial window.
func (s *Subscription) InTrial(now time.Time) bool {
	return s.TrialEndDate != nil && now.Before(*s.TrialEndDate)
}
