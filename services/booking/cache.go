package booking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"slotbook/models"
	"slotbook/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisAvailabilityCache stores computed availability views in Redis.
// Cache errors are logged and treated as misses.
type RedisAvailabilityCache struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
}

func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisAvailabilityCache {
	if ttl <= 0 {
		ttl = utils.DefaultAvailabilityTTL
	}
	return &RedisAvailabilityCache{Client: client, TTL: ttl, Logger: logger}
}

func availabilityKey(providerID string, day time.Time) string {
	return utils.AvailabilityCachePrefix + providerID + ":" + day.Format(utils.DateLayout)
}

func generationKey(providerID string, day time.Time) string {
	return availabilityKey(providerID, day) + ":gen"
}

// generationTTL keeps a day's generation counter well beyond any in-flight view computation.
const generationTTL = 24 * time.Hour

var errStaleView = errors.New("availability view computed before the last invalidation")

// Get returns the cached view. On a miss it also returns the day's current
// generation, which Set must be handed back.
func (c *RedisAvailabilityCache) Get(ctx context.Context, providerID string, day time.Time) ([]models.SlotAvailability, string, bool) {
	vals, err := c.Client.MGet(ctx, availabilityKey(providerID, day), generationKey(providerID, day)).Result()
	if err != nil {
		c.Logger.Warn("availability cache read failed", zap.Error(err))
		return nil, "", false
	}
	generation, _ := vals[1].(string)
	data, ok := vals[0].(string)
	if !ok {
		return nil, generation, false
	}
	var slots []models.SlotAvailability
	if err := json.Unmarshal([]byte(data), &slots); err != nil {
		return nil, generation, false
	}
	return slots, generation, true
}

// Set stores slots only while the day's generation still equals generation, so
// a view computed before a concurrent Invalidate is dropped instead of cached.
func (c *RedisAvailabilityCache) Set(ctx context.Context, providerID string, day time.Time, generation string, slots []models.SlotAvailability) {
	data, err := json.Marshal(slots)
	if err != nil {
		return
	}
	viewKey, genKey := availabilityKey(providerID, day), generationKey(providerID, day)

	err = c.Client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleView
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, viewKey, data, c.TTL)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleView), errors.Is(err, redis.TxFailedErr):
		c.Logger.Debug("availability view superseded, not cached",
			zap.String("providerId", providerID), zap.String("date", day.Format(utils.DateLayout)))
	default:
		c.Logger.Warn("availability cache write failed", zap.Error(err))
	}
}

// Invalidate drops the view and bumps the generation in one MULTI block.
func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, providerID string, day time.Time) {
	ctx = context.WithoutCancel(ctx)
	genKey := generationKey(providerID, day)
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, availabilityKey(providerID, day))
		return nil
	})
	if err != nil {
		c.Logger.Warn("availability cache invalidation failed", zap.Error(err))
	}
}
