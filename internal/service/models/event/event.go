package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/arvenlabs/billing-svc/internal/service/models/outbox"
	"github.com/google/uuid"
)

// Exchange is the topic exchange all domain events are published to.
const Exchange = "billing.events"

// Routing keys for domain events.
const (
	OrderCreated          = "order.created"
	OrderStatusChanged    = "order.status_changed"
	OrderPaymentProcessed = "order.payment_processed"
	OrderRefunded         = "order.refunded"
	CustomerNotified      = "customer.notified"

	SubscriptionCreated   = "subscription.created"
	SubscriptionUpdated   = "subscription.updated"
	SubscriptionCancelled = "subscription.cancelled"
	SubscriptionPaused    = "subscription.paused"
	SubscriptionResumed   = "subscription.resumed"
	SubscriptionBilled    = "subscription.billed"
	SubscriptionExpired   = "subscription.expired"
)

const maxPublishRetries = 5

// Envelope wraps every published event payload.
type Envelope struct {
	EventID    uuid.UUID       `json:"eventId"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// NewMessage builds an outbox message carrying the event envelope.
func NewMessage(eventType string, payload any) (outbox.Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return outbox.Message{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	now := time.Now()
	body, err := json.Marshal(Envelope{
		EventID:    uuid.New(),
		Type:       eventType,
		OccurredAt: now,
		Payload:    raw,
	})
	if err != nil {
		return outbox.Message{}, fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	return outbox.Message{
		ExchangeName: Exchange,
		RoutingKey:   eventType,
		Payload:      body,
		ContentType:  "application/json",
		MaxRetries:   maxPublishRetries,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	}, nil
}
