package utils

import (
	"context"
	"log"
	"time"

	"fixit/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient holds idempotency keys and other short-lived data.
	CacheClient *redis.Client
	// AuthCacheClient holds session token hashes.
	AuthCacheClient *redis.Client
)

// AuthCachePrefix is the prefix used for Redis session keys.
const AuthCachePrefix = "auth:"

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitRedis connects both Redis clients.
func InitRedis() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "cache")
	AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB, "auth")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "cache")
	}
	return CacheClient
}

// GetAuthCacheClient returns the Redis client for session caching.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB, "auth")
	}
	return AuthCacheClient
}
