package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fixit/models"
	"fixit/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Dispatcher hands a push off for delivery. Failures are logged, never returned,
// so a write that already succeeded is not reported as failed.
type Dispatcher interface {
	Dispatch(ctx context.Context, p models.PushPayload)
}

// Enqueuer is the part of *asynq.Client used by QueueDispatcher.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher enqueues pushes for the background worker.
type QueueDispatcher struct {
	Client Enqueuer
	Logger *zap.Logger
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, p models.PushPayload) {
	task, opts, err := tasks.NewPushTask(p)
	if err != nil {
		d.Logger.Error("push: failed to build task", zap.String("kind", p.Kind), zap.Error(err))
		return
	}
	if _, err := d.Client.EnqueueContext(ctx, task, opts...); err != nil {
		d.Logger.Warn("push: failed to enqueue",
			zap.String("actorID", p.ActorID),
			zap.String("kind", p.Kind),
			zap.Error(err))
	}
}

// InlineDispatcher sends in a detached goroutine when no queue is configured.
type InlineDispatcher struct {
	Service NotificationService
	Logger  *zap.Logger
}

func (d *InlineDispatcher) Dispatch(_ context.Context, p models.PushPayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.Service.SendPush(ctx, p); err != nil && !errors.Is(err, ErrNoDeviceToken) {
			d.Logger.Warn("push: delivery failed", zap.String("actorID", p.ActorID), zap.Error(err))
		}
	}()
}

// LogDispatcher only records pushes; used when FCM is not configured.
type LogDispatcher struct {
	Logger *zap.Logger
}

func (d *LogDispatcher) Dispatch(_ context.Context, p models.PushPayload) {
	d.Logger.Debug("push suppressed", zap.String("actorID", p.ActorID), zap.String("kind", p.Kind))
}

// Messages for the marketplace events.

func BookingCreated(b *models.Booking) models.PushPayload {
	return models.PushPayload{
		ActorID: b.ProviderID,
		Kind:    models.PushBookingCreated,
		Title:   "New booking request",
		Body:    fmt.Sprintf("%s booked you for %s at %s", b.CustomerName, b.ScheduledDate, b.ScheduledSlot),
		Data:    map[string]string{"bookingId": b.ID},
	}
}

func BookingStatusChanged(b *models.Booking, recipientID string) models.PushPayload {
	return models.PushPayload{
		ActorID: recipientID,
		Kind:    models.PushBookingStatus,
		Title:   "Booking update",
		Body:    fmt.Sprintf("Your booking on %s is now %s", b.ScheduledDate, b.Status),
		Data:    map[string]string{"bookingId": b.ID, "status": string(b.Status)},
	}
}

func NewMessage(conv *models.Conversation, msg *models.Message, recipientID string) models.PushPayload {
	sender := conv.CustomerName
	if msg.SenderID == conv.ProviderID {
		sender = conv.ProviderName
	}
	return models.PushPayload{
		ActorID: recipientID,
		Kind:    models.PushNewMessage,
		Title:   sender,
		Body:    msg.Text,
		Data:    map[string]string{"conversationId": conv.ID},
	}
}
