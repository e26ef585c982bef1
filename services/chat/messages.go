package chat

import (
	"context"
	"strings"
	"unicode/utf8"

	"fixit/models"
	"fixit/services/notification"
	"fixit/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AppendMessage posts text from senderID. The store assigns the sequence
// number and bumps the recipient's unread count in the same write.
func (s *DefaultChatService) AppendMessage(ctx context.Context, conversationID, senderID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, utils.NewValidationError("message cannot be empty")
	}
	if utf8.RuneCountInString(text) > models.MaxMessageLength {
		return nil, utils.NewValidationError("message cannot exceed %d characters", models.MaxMessageLength)
	}

	conv, err := s.Repo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, storeError(err)
	}
	if !conv.IsParticipant(senderID) {
		return nil, utils.NewUnauthorized("you are not a participant in this conversation")
	}
	recipient := conv.RecipientOf(senderID)

	msg, err := s.Repo.AppendMessage(ctx, conversationID, models.Message{
		ID:       uuid.New().String(),
		SenderID: senderID,
		Text:     text,
		SentAt:   s.now(),
	}, recipient)
	if err != nil {
		s.logger().Error("AppendMessage: store write failed", zap.String("conversationID", conversationID), zap.Error(err))
		return nil, storeError(err)
	}

	if s.Notifier != nil {
		s.Notifier.Dispatch(ctx, notification.NewMessage(conv, msg, recipient))
	}
	return msg, nil
}

// MarkRead zeroes the reader's unread count. Repeating it is harmless.
func (s *DefaultChatService) MarkRead(ctx context.Context, conversationID, readerID string) error {
	conv, err := s.Repo.GetByID(ctx, conversationID)
	if err != nil {
		return storeError(err)
	}
	if !conv.IsParticipant(readerID) {
		return utils.NewUnauthorized("you are not a participant in this conversation")
	}
	if conv.Unread[readerID] == 0 {
		return nil
	}
	if err := s.Repo.ResetUnread(ctx, conversationID, readerID); err != nil {
		return storeError(err)
	}
	return nil
}
