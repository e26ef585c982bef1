package conversationRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fixit/database/repository"
	"fixit/models"
)

// MemoryConversationRepo keeps conversations in process memory.
type MemoryConversationRepo struct {
	mu    sync.RWMutex
	convs map[string]models.Conversation
	feed  repository.Feed[models.Conversation]
}

func NewMemoryConversationRepo() *MemoryConversationRepo {
	return &MemoryConversationRepo{convs: make(map[string]models.Conversation)}
}

func (r *MemoryConversationRepo) snapshotLocked() []models.Conversation {
	out := make([]models.Conversation, 0, len(r.convs))
	for _, c := range r.convs {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *MemoryConversationRepo) snapshot() []models.Conversation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *MemoryConversationRepo) CreateIfAbsent(_ context.Context, conv *models.Conversation) (*models.Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.convs[conv.ID]; ok {
		c := existing.Clone()
		return &c, false, nil
	}
	stored := conv.Clone()
	stored.Messages = []models.Message{}
	stored.Unread = map[string]int{conv.CustomerID: 0, conv.ProviderID: 0}
	stored.NextSeq = 1
	r.convs[conv.ID] = stored
	r.feed.Publish(r.snapshotLocked())

	c := stored.Clone()
	return &c, true, nil
}

func (r *MemoryConversationRepo) GetByID(_ context.Context, id string) (*models.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.convs[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, repository.ErrNotFound)
	}
	c = c.Clone()
	return &c, nil
}

func (r *MemoryConversationRepo) AppendMessage(_ context.Context, id string, msg models.Message, recipientID string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, repository.ErrNotFound)
	}
	c = c.Clone()
	msg.Seq = c.NextSeq
	c.NextSeq++
	c.Messages = append(c.Messages, msg)
	c.LastMessagePreview = msg.Text
	c.LastMessageAt = msg.SentAt
	c.Unread[recipientID]++
	r.convs[id] = c
	r.feed.Publish(r.snapshotLocked())
	return &msg, nil
}

func (r *MemoryConversationRepo) ResetUnread(_ context.Context, id, readerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok {
		return fmt.Errorf("conversation %s: %w", id, repository.ErrNotFound)
	}
	c = c.Clone()
	c.Unread[readerID] = 0
	r.convs[id] = c
	r.feed.Publish(r.snapshotLocked())
	return nil
}

func (r *MemoryConversationRepo) Watch(ctx context.Context, emit func([]models.Conversation)) error {
	return repository.WatchFeed(ctx, &r.feed, r.snapshot, emit)
}
