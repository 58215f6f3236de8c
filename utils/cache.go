// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"slotbook/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient caches availability views.
	CacheClient *redis.Client
	// PubSubClient carries socket notifications between instances.
	PubSubClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
}

func mustPing(client *redis.Client, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
}

// InitCache initializes the Redis cache client.
func InitCache() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	mustPing(CacheClient, "Cache")
}

// InitPubSub initializes the Redis client used for notification fan-out.
func InitPubSub() {
	PubSubClient = newRedisClient(config.AppConfig.RedisPubSubDB)
	mustPing(PubSubClient, "PubSub")
}

