package user

import (
	"context"
	"sync"

	"fixit/models"
)

// SessionHub fans current-actor changes out to that actor's observers.
type SessionHub struct {
	mu   sync.RWMutex
	subs map[string]map[chan models.SessionEvent]struct{}
}

func NewSessionHub() *SessionHub {
	return &SessionHub{subs: make(map[string]map[chan models.SessionEvent]struct{})}
}

// Subscribe registers an observer for actorID until ctx ends. If seed is
// non-nil it is the first event delivered.
func (h *SessionHub) Subscribe(ctx context.Context, actorID string, seed *models.SessionEvent) <-chan models.SessionEvent {
	ch := make(chan models.SessionEvent, 1)
	if seed != nil {
		ch <- *seed
	}

	h.mu.Lock()
	if h.subs[actorID] == nil {
		h.subs[actorID] = make(map[chan models.SessionEvent]struct{})
	}
	h.subs[actorID][ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs[actorID], ch)
		if len(h.subs[actorID]) == 0 {
			delete(h.subs, actorID)
		}
		h.mu.Unlock()
		close(ch)
	}()
	return ch
}

// Publish never blocks: an observer that has not read the previous event
// only sees the newest one.
func (h *SessionHub) Publish(actorID string, ev models.SessionEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[actorID] {
		select {
		case ch <- ev:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}
