package notification_test

import (
	"context"
	"sync"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"

	"fixit/models"
)

type mockActors struct {
	getByIDFn func(ctx context.Context, id string) (*models.Actor, error)
}

func (m *mockActors) GetByID(ctx context.Context, id string) (*models.Actor, error) {
	return m.getByIDFn(ctx, id)
}

type mockSender struct {
	mu   sync.Mutex
	sent []*messaging.Message
	err  error
}

func (m *mockSender) Send(_ context.Context, msg *messaging.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "projects/fixit/messages/1", nil
}

func (m *mockSender) Sent() []*messaging.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*messaging.Message(nil), m.sent...)
}

type mockEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (m *mockEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.tasks = append(m.tasks, task)
	m.opts = append(m.opts, opts)
	return &asynq.TaskInfo{ID: "task-1", Queue: "notifications"}, nil
}
