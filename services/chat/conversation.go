package chat

import (
	"context"
	"errors"
	"strings"

	"fixit/database/repository"
	"fixit/models"
	"fixit/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// conversationNamespace seeds the name-based ids of conversations.
var conversationNamespace = uuid.MustParse("6f1c9a52-3d0e-4b8e-9f51-2a7c4d0b9e11")

// ConversationID is the stable id of the thread between a customer and a provider.
func ConversationID(customerID, providerID string) string {
	return uuid.NewSHA1(conversationNamespace, []byte(customerID+"|"+providerID)).String()
}

func storeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return utils.NewNotFound("conversation not found")
	case errors.Is(err, repository.ErrConflict):
		return utils.NewConflict("conversation is busy, please retry")
	default:
		return utils.NewRemoteUnavailable("conversation store unavailable", err)
	}
}

// GetOrCreate returns the single thread for the pair, creating it on first use.
// Concurrent callers converge on the same record.
func (s *DefaultChatService) GetOrCreate(ctx context.Context, actorID, customerID, providerID string, meta models.DisplayMetadata) (*models.Conversation, error) {
	customerID = strings.TrimSpace(customerID)
	providerID = strings.TrimSpace(providerID)
	if customerID == "" || providerID == "" {
		return nil, utils.NewValidationError("customer and provider are required")
	}
	if customerID == providerID {
		return nil, utils.NewValidationError("cannot start a conversation with yourself")
	}
	if actorID != customerID && actorID != providerID {
		return nil, utils.NewUnauthorized("you can only open your own conversations")
	}

	id := ConversationID(customerID, providerID)
	if existing, err := s.Repo.GetByID(ctx, id); err == nil {
		return existing, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err)
	}

	customer, err := s.lookup(ctx, customerID, models.RoleCustomer)
	if err != nil {
		return nil, err
	}
	provider, err := s.lookup(ctx, providerID, models.RoleProvider)
	if err != nil {
		return nil, err
	}
	if meta.CustomerName == "" {
		meta.CustomerName = customer.DisplayName
	}
	if meta.ProviderName == "" {
		meta.ProviderName = provider.DisplayName
	}

	stored, created, err := s.Repo.CreateIfAbsent(ctx, &models.Conversation{
		ID:           id,
		CustomerID:   customerID,
		ProviderID:   providerID,
		CustomerName: meta.CustomerName,
		ProviderName: meta.ProviderName,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, storeError(err)
	}
	if created {
		s.logger().Info("GetOrCreate: conversation opened",
			zap.String("conversationID", id),
			zap.String("customerID", customerID),
			zap.String("providerID", providerID))
	}
	return stored, nil
}

func (s *DefaultChatService) lookup(ctx context.Context, actorID string, role models.Role) (*models.Actor, error) {
	actor, err := s.Users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFound("%s %s not found", role, actorID)
		}
		return nil, utils.NewRemoteUnavailable("actor store unavailable", err)
	}
	if actor.Role != role {
		return nil, utils.NewValidationError("%s is not a %s", actorID, role)
	}
	return actor, nil
}

// Get returns one conversation if actorID takes part in it.
func (s *DefaultChatService) Get(ctx context.Context, actorID, conversationID string) (*models.ConversationView, error) {
	conv, err := s.Repo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, storeError(err)
	}
	if !conv.IsParticipant(actorID) {
		return nil, utils.NewUnauthorized("you are not a participant in this conversation")
	}
	view := conv.ViewFor(actorID)
	return &view, nil
}
