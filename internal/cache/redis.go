package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Domenick1991/farmstay/config"
	"github.com/Domenick1991/farmstay/internal/domain"
)

type RedisCache struct {
	client     *redis.Client
	sessionTTL time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisCache(client *redis.Client, sessionTTL time.Duration) *RedisCache {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &RedisCache{client: client, sessionTTL: sessionTTL}
}

// Get refreshes the session TTL on every read.
func (c *RedisCache) Get(ctx context.Context, id string) (*domain.Session, error) {
	key := sessionKey(id)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	_ = c.client.Expire(ctx, key, c.sessionTTL).Err()
	return &sess, nil
}

func (c *RedisCache) Save(ctx context.Context, sess *domain.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return c.client.Set(ctx, sessionKey(sess.ID), payload, c.sessionTTL).Err()
}

func (c *RedisCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, sessionKey(id)).Err()
}

func (c *RedisCache) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, "locked", ttl).Result()
}

func (c *RedisCache) ReleaseLock(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func sessionKey(id string) string {
	return "session:" + id
}

var _ Store = (*RedisCache)(nil)
