package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clubhub/campusbooking/config"
	"github.com/clubhub/campusbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	catalogTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, catalogTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		catalogTTL: catalogTTL,
	}
}

// NewRedisCacheWithClient wraps an existing client; used by tests.
func NewRedisCacheWithClient(client *redis.Client, catalogTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, catalogTTL: catalogTTL}
}

func (c *RedisCache) GetCatalog(ctx context.Context) ([]domain.Resource, error) {
	data, err := c.client.Get(ctx, catalogKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var resources []domain.Resource
	if err := json.Unmarshal(data, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

func (c *RedisCache) SetCatalog(ctx context.Context, resources []domain.Resource) error {
	payload, err := json.Marshal(resources)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogKey(), payload, c.catalogTTL).Err()
}

func (c *RedisCache) InvalidateCatalog(ctx context.Context) error {
	return c.client.Del(ctx, catalogKey()).Err()
}

// AcquireSlotLock is the fast-path guard against two requests racing for the
// same interval. The database transaction remains the authority; the lock
// just fails the loser early.
func (c *RedisCache) AcquireSlotLock(ctx context.Context, resourceID uuid.UUID, start, end time.Time, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, slotLockKey(resourceID, start, end), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSlotLock(ctx context.Context, resourceID uuid.UUID, start, end time.Time) error {
	return c.client.Del(ctx, slotLockKey(resourceID, start, end)).Err()
}

// MarkReminded records that a reminder went out for the booking. Returns
// false when one was already sent within the TTL, so the sweep never fires
// twice without mutating booking state.
func (c *RedisCache) MarkReminded(ctx context.Context, bookingID uuid.UUID, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, reminderKey(bookingID), "sent", ttl).Result()
}

func catalogKey() string {
	return "cache:resources"
}

func slotLockKey(resourceID uuid.UUID, start, end time.Time) string {
	return fmt.Sprintf("lock:resource:%s:%d:%d", resourceID, start.Unix(), end.Unix())
}

func reminderKey(bookingID uuid.UUID) string {
	return fmt.Sprintf("reminder:booking:%s", bookingID)
}
