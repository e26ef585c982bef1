package user

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fixit/utils"

	"github.com/go-redis/redis/v8"
)

// ErrSessionMiss means the store holds no entry for the actor.
var ErrSessionMiss = errors.New("session not cached")

// SessionStore caches the hash of each actor's live token.
type SessionStore interface {
	Save(ctx context.Context, actorID, tokenHash string, ttl time.Duration) error
	Get(ctx context.Context, actorID string) (string, error)
	Delete(ctx context.Context, actorID string) error
}

// RedisSessionStore keeps token hashes in the auth Redis database.
type RedisSessionStore struct {
	Client *redis.Client
}

func sessionKey(actorID string) string { return utils.AuthCachePrefix + actorID }

func (s *RedisSessionStore) Save(ctx context.Context, actorID, tokenHash string, ttl time.Duration) error {
	if err := s.Client.Set(ctx, sessionKey(actorID), tokenHash, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, actorID string) (string, error) {
	hash, err := s.Client.Get(ctx, sessionKey(actorID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionMiss
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return hash, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, actorID string) error {
	return s.Client.Del(ctx, sessionKey(actorID)).Err()
}

type memorySession struct {
	hash    string
	expires time.Time
}

// MemorySessionStore is the in-process SessionStore.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession)}
}

func (s *MemorySessionStore) Save(_ context.Context, actorID, tokenHash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[actorID] = memorySession{hash: tokenHash, expires: time.Now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, actorID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[actorID]
	if !ok || time.Now().After(sess.expires) {
		delete(s.sessions, actorID)
		return "", ErrSessionMiss
	}
	return sess.hash, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, actorID)
	return nil
}
