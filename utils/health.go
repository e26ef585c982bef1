package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Store     string          `json:"store"`
	Mongo     *bool           `json:"mongo,omitempty"`
	Redis     map[string]bool `json:"redis"`
	CheckedAt time.Time       `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// CheckHealth pings each dependency once. A nil mongoClient means the in-process store is in use.
func CheckHealth(ctx context.Context, redisClients map[string]*redis.Client, mongoClient *mongo.Client) HealthStatus {
	status := HealthStatus{Store: "memory", Redis: make(map[string]bool, len(redisClients)), CheckedAt: time.Now()}

	for name, client := range redisClients {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		status.Redis[name] = client.Ping(pingCtx).Err() == nil
		cancel()
	}

	if mongoClient != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		healthy := mongoClient.Ping(pingCtx, nil) == nil
		cancel()
		status.Store = "mongo"
		status.Mongo = &healthy
	}

	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor performs periodic health checks until ctx is done.
func StartHealthMonitor(ctx context.Context, redisClients map[string]*redis.Client, mongoClient *mongo.Client) {
	CheckHealth(ctx, redisClients, mongoClient)
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				CheckHealth(ctx, redisClients, mongoClient)
			}
		}
	}()
}
