package notification

import (
	"context"
	"fmt"

	"fixit/models"

	"firebase.google.com/go/v4/messaging"
)

// ActorLookup resolves the actor a push is addressed to.
type ActorLookup interface {
	GetByID(ctx context.Context, id string) (*models.Actor, error)
}

// Sender is the part of the FCM client used here; *messaging.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// NotificationService delivers a push to one actor's device.
type NotificationService interface {
	SendPush(ctx context.Context, p models.PushPayload) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Users  ActorLookup
	Client Sender
}

// ErrNoDeviceToken is returned when the actor never registered a device.
var ErrNoDeviceToken = fmt.Errorf("actor has no FCM token")

// SendPush looks up the actor's FCM token and sends the message.
func (s *DefaultNotificationService) SendPush(ctx context.Context, p models.PushPayload) error {
	actor, err := s.Users.GetByID(ctx, p.ActorID)
	if err != nil {
		return fmt.Errorf("SendPush: could not find actor %s: %w", p.ActorID, err)
	}
	if actor.FCMToken == "" {
		return fmt.Errorf("SendPush: actor %s: %w", p.ActorID, ErrNoDeviceToken)
	}

	data := map[string]string{"kind": p.Kind, "role": string(actor.Role)}
	for k, v := range p.Data {
		data[k] = v
	}

	msg := &messaging.Message{
		Token: actor.FCMToken,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	if _, err := s.Client.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendPush: failed to send FCM message: %w", err)
	}
	return nil
}
