package repository

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned when no document matches the lookup.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a conditional write lost a race.
	ErrConflict = errors.New("document changed concurrently")
	// ErrDuplicate is returned when a unique key already exists.
	ErrDuplicate = errors.New("duplicate key")
)

// Feed fans full snapshots out to subscribers. Each subscriber holds at most
// one pending snapshot; a newer snapshot replaces an unread one.
type Feed[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan []T
}

// Subscribe registers a subscriber. The returned cancel func closes the channel.
func (f *Feed[T]) Subscribe() (<-chan []T, func()) {
	return f.subscribe(nil, false)
}

// SubscribeSeeded is Subscribe with seed already pending on the channel.
func (f *Feed[T]) SubscribeSeeded(seed []T) (<-chan []T, func()) {
	return f.subscribe(seed, true)
}

func (f *Feed[T]) subscribe(seed []T, seeded bool) (<-chan []T, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs == nil {
		f.subs = make(map[int]chan []T)
	}
	id := f.nextID
	f.nextID++
	ch := make(chan []T, 1)
	if seeded {
		ch <- seed
	}
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs, id)
			close(ch)
		})
	}
}

// Publish delivers snapshot to every subscriber without blocking.
func (f *Feed[T]) Publish(snapshot []T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- snapshot:
			continue
		default:
		}
		// Drop the stale pending snapshot.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// Len returns the number of live subscribers.
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// WatchFeed is the in-process counterpart of WatchCollection: it emits
// current() and then every published snapshot until ctx ends.
func WatchFeed[T any](ctx context.Context, f *Feed[T], current func() []T, emit func([]T)) error {
	ch, cancel := f.Subscribe()
	defer cancel()

	emit(current())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snapshot, ok := <-ch:
			if !ok {
				return ctx.Err()
			}
			emit(snapshot)
		}
	}
}
