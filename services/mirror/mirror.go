package mirror

import (
	"context"
	"sync"
	"time"

	"fixit/database/repository"

	"go.uber.org/zap"
)

// Source is a collection that can be watched as a stream of full snapshots.
type Source[T any] interface {
	Watch(ctx context.Context, emit func([]T)) error
}

// Mirror holds the latest snapshot of one collection and republishes it.
// Snapshots are replaced wholesale; the mirror never patches in place.
type Mirror[T any] struct {
	name       string
	src        Source[T]
	retryDelay time.Duration
	logger     *zap.Logger

	mu    sync.RWMutex
	items []T
	ready chan struct{}
	once  sync.Once
	feed  repository.Feed[T]
}

func New[T any](name string, src Source[T], retryDelay time.Duration, logger *zap.Logger) *Mirror[T] {
	if retryDelay <= 0 {
		retryDelay = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror[T]{
		name:       name,
		src:        src,
		retryDelay: retryDelay,
		logger:     logger.With(zap.String("mirror", name)),
		ready:      make(chan struct{}),
	}
}

// Start runs the subscription loop in the background until ctx is done.
func (m *Mirror[T]) Start(ctx context.Context) {
	go m.Run(ctx)
}

// Run keeps the subscription alive. A failed subscription is logged, the
// last snapshot stays in place, and the subscription is retried after a fixed delay.
func (m *Mirror[T]) Run(ctx context.Context) {
	for {
		err := m.src.Watch(ctx, m.replace)
		if ctx.Err() != nil {
			return
		}
		m.logger.Warn("subscription lost, serving last snapshot",
			zap.Error(err),
			zap.Duration("retryIn", m.retryDelay))

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.retryDelay):
		}
	}
}

func (m *Mirror[T]) replace(items []T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
	m.once.Do(func() { close(m.ready) })
	m.feed.Publish(items)
	m.logger.Debug("snapshot replaced", zap.Int("count", len(items)))
}

// Snapshot returns a copy of the current items.
func (m *Mirror[T]) Snapshot() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

// Ready is closed once the first snapshot has arrived.
func (m *Mirror[T]) Ready() <-chan struct{} {
	return m.ready
}

// WaitReady blocks until the first snapshot or ctx is done.
func (m *Mirror[T]) WaitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns a channel of snapshots that closes when ctx ends.
// The current snapshot, if any, is delivered first. Slow readers only see the newest snapshot.
func (m *Mirror[T]) Subscribe(ctx context.Context) <-chan []T {
	m.mu.RLock()
	var (
		ch     <-chan []T
		cancel func()
	)
	select {
	case <-m.ready:
		ch, cancel = m.feed.SubscribeSeeded(m.items)
	default:
		ch, cancel = m.feed.Subscribe()
	}
	m.mu.RUnlock()

	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch
}
