package iidempotency

import "context"

// IIdempotencyStore guards operations that must run at most once per key,
// such as one billing attempt per subscription billing period.
type IIdempotencyStore interface {
	// TryLock acquires the lock for scope+key. Returns false if another
	// attempt already holds or completed it within the lock TTL.
	TryLock(ctx context.Context, scope, key string) (bool, error)

	// Release frees the lock so the operation may be retried.
	Release(ctx context.Context, scope, key string) error
}
