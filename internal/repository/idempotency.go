package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/vercart/storefront/internal/domain/checkout"
)

const (
	idempotencyKeyPrefix = "checkout:idem:"
	idempotencyKeyTTL    = 24 * time.Hour

	// pendingMarker occupies a reserved key until the submission binds its
	// order ID. A marker that never gets replaced expires with the TTL.
	pendingMarker = "pending"
)

var _ checkout.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore deduplicates checkout submissions using redis SET NX with
// a TTL. Keys live long enough to absorb client retries but are not a
// permanent record; the order ledger is.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore returns an IdempotencyStore using the given client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Reserve atomically claims the key. It returns false when the key is
// already held by an earlier submission.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, idempotencyKeyPrefix+key, pendingMarker, idempotencyKeyTTL).Result()
	if err != nil {
		return false, fmt.Errorf("reserving idempotency key: %w", err)
	}
	return ok, nil
}

// Bind records the order created under a reserved key, keeping the original
// TTL window.
func (s *IdempotencyStore) Bind(ctx context.Context, key, orderID string) error {
	err := s.client.Set(ctx, idempotencyKeyPrefix+key, orderID, redis.KeepTTL).Err()
	if err != nil {
		return fmt.Errorf("binding idempotency key: %w", err)
	}
	return nil
}

// Release deletes a reserved key whose submission failed before an order
// was bound, freeing it for a retry.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, idempotencyKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("releasing idempotency key: %w", err)
	}
	return nil
}

// Lookup returns the order ID bound to the key. It returns "" when the key
// is reserved but not yet bound, or when the key has expired.
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("looking up idempotency key: %w", err)
	}
	if val == pendingMarker {
		return "", nil
	}
	return val, nil
}
