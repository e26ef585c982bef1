package conversationRepo

import (
	"context"

	"fixit/models"
)

// ConversationRepository defines methods for conversation data access.
type ConversationRepository interface {
	// CreateIfAbsent stores conv unless a conversation with the same id exists,
	// and returns whichever record is stored. created is true for the winner.
	CreateIfAbsent(ctx context.Context, conv *models.Conversation) (stored *models.Conversation, created bool, err error)
	// GetByID retrieves a conversation; repository.ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	// AppendMessage assigns the next sequence number to msg, appends it,
	// refreshes the preview and bumps the recipient's unread counter.
	AppendMessage(ctx context.Context, id string, msg models.Message, recipientID string) (*models.Message, error)
	// ResetUnread zeroes readerID's unread counter.
	ResetUnread(ctx context.Context, id, readerID string) error
	// Watch emits the full collection on subscribe and after every change.
	Watch(ctx context.Context, emit func([]models.Conversation)) error
}
