package cron

import (
	"context"
	"errors"
	"time"

	"fixit/config"
	"fixit/services/notification"
	"fixit/services/tasks"
	"fixit/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt is the asynq connection shared by the client and the worker.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitPushWorker runs the push delivery worker in background and returns it for shutdown.
func InitPushWorker(ctx context.Context, notifSvc notification.NotificationService) *asynq.Server {
	logger := utils.GetLogger().With(zap.String("component", "push-worker"))

	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"notifications": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendPush, HandlePushTask(notifSvc, logger))

	go monitorRedisConnection(ctx, logger)

	// Start async worker with retry logic
	go func() {
		logger.Info("starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil || errors.Is(err, asynq.ErrServerClosed) {
				return
			}
			logger.Warn("worker failed to start", zap.Int("attempt", attempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("max retry attempts reached, push delivery disabled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// HandlePushTask delivers one queued push. Missing device tokens are not retried.
func HandlePushTask(notifSvc notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParsePushTask(task)
		if err != nil {
			logger.Error("invalid push payload", zap.Error(err))
			return errors.Join(err, asynq.SkipRetry)
		}

		err = notifSvc.SendPush(ctx, p)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, notification.ErrNoDeviceToken):
			logger.Debug("push skipped, no device", zap.String("actorID", p.ActorID))
			return nil
		default:
			logger.Warn("push failed", zap.String("actorID", p.ActorID), zap.String("kind", p.Kind), zap.Error(err))
			return err
		}
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
// It stops when ctx is done.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil && ctx.Err() == nil {
				logger.Warn("queue redis connection lost", zap.Error(err))
			}
		}
	}
}
