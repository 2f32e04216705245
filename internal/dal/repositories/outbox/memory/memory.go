package memoryrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arvenlabs/billing-svc/internal/service/models/outbox"
)

// MemoryOutboxRepository is an in-memory outbox repository.
type MemoryOutboxRepository struct {
	mu       sync.Mutex
	nextID   int64
	messages map[int64]outbox.Message
}

func NewMemoryOutboxRepository() *MemoryOutboxRepository {
	return &MemoryOutboxRepository{
		messages: make(map[int64]outbox.Message),
	}
}

func (r *MemoryOutboxRepository) Insert(_ context.Context, msg outbox.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	msg.ID = r.nextID
	r.messages[msg.ID] = msg

	return nil
}

func (r *MemoryOutboxRepository) GetPendingMessages(_ context.Context, limit int) ([]outbox.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var pending []outbox.Message
	for _, msg := range r.messages {
		if !msg.NextRetryAt.After(now) && msg.RetryCount < msg.MaxRetries {
			pending = append(pending, msg)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].NextRetryAt.Before(pending[j].NextRetryAt)
	})

	if limit > 0 && limit < len(pending) {
		pending = pending[:limit]
	}

	return pending, nil
}

func (r *MemoryOutboxRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.messages, id)

	return nil
}

func (r *MemoryOutboxRepository) UpdateRetry(
	_ context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg, ok := r.messages[id]
	if !ok {
		return nil
	}
	msg.RetryCount = retryCount
	msg.LastError = lastError
	msg.NextRetryAt = nextRetryAt
	msg.UpdatedAt = time.Now()
	r.messages[id] = msg

	return nil
}

// Pending returns the number of undelivered messages. Test helper.
func (r *MemoryOutboxRepository) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.messages)
}
