package port

import "context"

// CacheRepository is the Redis fast path: a stock mirror for POS
// availability reads and an idempotency guard for sale submissions.
// MySQL remains the source of truth for stock.
type CacheRepository interface {
	// DecrementStock atomically decreases mirrored stock, returns false if insufficient
	DecrementStock(ctx context.Context, productID string, quantity int) (bool, error)

	// IncrementStock restores mirrored stock
	IncrementStock(ctx context.Context, productID string, quantity int) error

	SetStock(ctx context.Context, productID string, quantity int) error

	// GetStock returns the mirrored quantity; ok is false on a cache miss
	GetStock(ctx context.Context, productID string) (quantity int, ok bool, err error)

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency removes a key so the operation may be retried
	ReleaseIdempotency(ctx context.Context, key string) error
}
