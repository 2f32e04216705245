package outbox

import (
	"time"
)

// Message is an event waiting to be published to RabbitMQ. Messages are
// written in the same transaction as the domain change they describe and
// drained by the outbox worker.
type Message struct {
	ID           int64
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}
