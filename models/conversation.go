package models

import "time"

const MaxMessageLength = 500

// Conversation is the single thread between one customer and one provider.
type Conversation struct {
	ID                 string         `bson:"id" json:"id"`
	CustomerID         string         `bson:"customerId" json:"customerId"`
	ProviderID         string         `bson:"providerId" json:"providerId"`
	CustomerName       string         `bson:"customerName" json:"customerName"`
	ProviderName       string         `bson:"providerName" json:"providerName"`
	Messages           []Message      `bson:"messages" json:"messages"`
	LastMessagePreview string         `bson:"lastMessagePreview" json:"lastMessagePreview"`
	LastMessageAt      time.Time      `bson:"lastMessageAt,omitempty" json:"lastMessageAt,omitempty"`
	Unread             map[string]int `bson:"unread" json:"-"`
	NextSeq            int64          `bson:"nextSeq" json:"-"`
	CreatedAt          time.Time      `bson:"createdAt" json:"createdAt"`
}

// Message is immutable once appended.
type Message struct {
	ID       string    `bson:"id" json:"id"`
	SenderID string    `bson:"senderId" json:"senderId"`
	Text     string    `bson:"text" json:"text"`
	SentAt   time.Time `bson:"sentAt" json:"sentAt"`
	Seq      int64     `bson:"seq" json:"seq"`
}

// DisplayMetadata carries the names shown on each side of a thread.
type DisplayMetadata struct {
	CustomerName string `json:"customerName"`
	ProviderName string `json:"providerName"`
}

func (c *Conversation) IsParticipant(actorID string) bool {
	return actorID != "" && (c.CustomerID == actorID || c.ProviderID == actorID)
}

// RecipientOf returns the participant who did not send.
func (c *Conversation) RecipientOf(senderID string) string {
	if senderID == c.CustomerID {
		return c.ProviderID
	}
	return c.CustomerID
}

// LastActivity is the newest message time, or creation time for an empty thread.
func (c *Conversation) LastActivity() time.Time {
	if c.LastMessageAt.IsZero() {
		return c.CreatedAt
	}
	return c.LastMessageAt
}

// Clone returns a deep copy.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	out.Unread = make(map[string]int, len(c.Unread))
	for k, v := range c.Unread {
		out.Unread[k] = v
	}
	return out
}

// ConversationView is a conversation as seen by one participant.
type ConversationView struct {
	Conversation
	UnreadCount int `json:"unreadCount"`
}

// ViewFor projects c for viewerID.
func (c Conversation) ViewFor(viewerID string) ConversationView {
	return ConversationView{Conversation: c, UnreadCount: c.Unread[viewerID]}
}

type StartConversationRequest struct {
	ProviderID string `json:"providerId"`
	CustomerID string `json:"customerId"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}
