package chat

import (
	"context"
	"sort"

	"fixit/models"
)

func viewsFor(all []models.Conversation, actorID string, role models.Role) []models.ConversationView {
	out := make([]models.ConversationView, 0)
	for i := range all {
		c := &all[i]
		if (role == models.RoleCustomer && c.CustomerID == actorID) ||
			(role == models.RoleProvider && c.ProviderID == actorID) {
			out = append(out, c.ViewFor(actorID))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastActivity().After(out[j].LastActivity())
	})
	return out
}

// ConversationsFor lists actorID's threads from the mirror, most recent activity first.
func (s *DefaultChatService) ConversationsFor(actorID string, role models.Role) []models.ConversationView {
	if s.Mirror == nil {
		return []models.ConversationView{}
	}
	return viewsFor(s.Mirror.Snapshot(), actorID, role)
}

// Subscribe streams actor-scoped views until ctx ends. Slow readers only see the latest.
func (s *DefaultChatService) Subscribe(ctx context.Context, actorID string, role models.Role) <-chan []models.ConversationView {
	out := make(chan []models.ConversationView, 1)
	if s.Mirror == nil {
		close(out)
		return out
	}
	in := s.Mirror.Subscribe(ctx)
	go func() {
		defer close(out)
		for snap := range in {
			views := viewsFor(snap, actorID, role)
			select {
			case out <- views:
				continue
			default:
			}
			select {
			case <-out:
			default:
			}
			select {
			case out <- views:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
