package tasks

import (
	"encoding/json"
	"time"

	"fixit/models"

	"github.com/hibiken/asynq"
)

const TypeSendPush = "push:send"

// NewPushTask wraps a push payload for the notification queue.
func NewPushTask(payload models.PushPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendPush, b)
	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(30 * time.Second),
		asynq.Queue("notifications"),
	}
	return task, opts, nil
}

// ParsePushTask decodes a task built by NewPushTask.
func ParsePushTask(task *asynq.Task) (models.PushPayload, error) {
	var p models.PushPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
