package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	idempotencyTTL     = 24 * time.Hour
	idempotencyPending = "pending"
	idempotencyPrefix  = "idem:booking:"
)

// ErrRequestInFlight means another request holds the same key.
var ErrRequestInFlight = errors.New("a request with this idempotency key is in progress")

// IdempotencyStore remembers which booking a client key produced.
type IdempotencyStore interface {
	// Reserve claims key. When the key already finished it returns the booking id.
	Reserve(ctx context.Context, key string) (bookingID string, err error)
	Complete(ctx context.Context, key, bookingID string) error
	Release(ctx context.Context, key string) error
}

func idempotencyKey(customerID, key string) string {
	return idempotencyPrefix + customerID + ":" + key
}

// RedisIdempotencyStore keeps keys in the cache database for a day.
type RedisIdempotencyStore struct {
	Client *redis.Client
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string) (string, error) {
	ok, err := s.Client.SetNX(ctx, key, idempotencyPending, idempotencyTTL).Result()
	if err != nil {
		return "", fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if ok {
		return "", nil
	}
	val, err := s.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between the two calls.
		return s.Reserve(ctx, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if val == idempotencyPending {
		return "", ErrRequestInFlight
	}
	return val, nil
}

func (s *RedisIdempotencyStore) Complete(ctx context.Context, key, bookingID string) error {
	return s.Client.Set(ctx, key, bookingID, idempotencyTTL).Err()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key).Err()
}

// MemoryIdempotencyStore is the in-process IdempotencyStore.
type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{keys: make(map[string]string)}
}

func (s *MemoryIdempotencyStore) Reserve(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.keys[key]
	if !ok {
		s.keys[key] = idempotencyPending
		return "", nil
	}
	if val == idempotencyPending {
		return "", ErrRequestInFlight
	}
	return val, nil
}

func (s *MemoryIdempotencyStore) Complete(_ context.Context, key, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = bookingID
	return nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}
