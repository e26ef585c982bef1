package chat

import (
	"context"
	"time"

	conversationRepo "fixit/database/repository/conversation"
	userRepo "fixit/database/repository/user"
	"fixit/models"
	"fixit/services/notification"

	"go.uber.org/zap"
)

// ChatService is the conversation registry.
type ChatService interface {
	GetOrCreate(ctx context.Context, actorID, customerID, providerID string, meta models.DisplayMetadata) (*models.Conversation, error)
	AppendMessage(ctx context.Context, conversationID, senderID, text string) (*models.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID string) error
	ConversationsFor(actorID string, role models.Role) []models.ConversationView
	Get(ctx context.Context, actorID, conversationID string) (*models.ConversationView, error)
	Subscribe(ctx context.Context, actorID string, role models.Role) <-chan []models.ConversationView
}

// SnapshotSource is the read side of the conversations mirror.
type SnapshotSource interface {
	Snapshot() []models.Conversation
	Subscribe(ctx context.Context) <-chan []models.Conversation
}

type DefaultChatService struct {
	Repo     conversationRepo.ConversationRepository
	Users    userRepo.UserRepository
	Mirror   SnapshotSource
	Notifier notification.Dispatcher
	Now      func() time.Time
	Logger   *zap.Logger
}

func (s *DefaultChatService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *DefaultChatService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
