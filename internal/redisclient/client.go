package redisclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"kitchen-analytics/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseLockScript deletes the lock only while it still holds our token
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and checks the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func itemKey(id string) string {
	return "item:" + id
}

func lockKey(name string) string {
	return "lock:" + name
}

func idempotencyKey(key string) string {
	return "idempotency:" + key
}

// GetItems reads cached item metadata. Ids with no cache entry are absent from
// the result.
func (c *Client) GetItems(ctx context.Context, ids []string) (map[string]models.ItemRecord, error) {
	if len(ids) == 0 {
		return map[string]models.ItemRecord{}, nil
	}

	pipe := c.rdb.Pipeline()
	cmds := make([]*redis.StringStringMapCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, itemKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("item cache read failed: %w", err)
	}

	out := make(map[string]models.ItemRecord, len(ids))
	for i, id := range ids {
		fields, err := cmds[i].Result()
		if err != nil || len(fields) == 0 {
			continue
		}
		out[id] = decodeItem(id, fields)
	}
	return out, nil
}

// SetItems caches item metadata with the given TTL
func (c *Client) SetItems(ctx context.Context, items []models.ItemRecord, ttl time.Duration) error {
	if len(items) == 0 {
		return nil
	}

	pipe := c.rdb.Pipeline()
	for _, item := range items {
		key := itemKey(item.ID)
		pipe.HSet(ctx, key, encodeItem(item))
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("item cache write failed: %w", err)
	}
	return nil
}

func encodeItem(item models.ItemRecord) map[string]interface{} {
	return map[string]interface{}{
		"name":  item.Name,
		"image": item.Image,
		"price": strconv.FormatFloat(item.Price, 'f', -1, 64),
	}
}

func decodeItem(id string, fields map[string]string) models.ItemRecord {
	price, _ := strconv.ParseFloat(fields["price"], 64)
	return models.ItemRecord{
		ID:    id,
		Name:  fields["name"],
		Image: fields["image"],
		Price: price,
	}
}

// SetIdempotencyKey stores an idempotency key with TTL
func (c *Client) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, idempotencyKey(key), value, ttl).Err()
}

// CheckIdempotencyKey checks if an idempotency key exists
func (c *Client) CheckIdempotencyKey(ctx context.Context, key string) (bool, error) {
	result, err := c.rdb.Exists(ctx, idempotencyKey(key)).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}

// AcquireLock acquires a distributed lock. The returned token must be passed
// to ReleaseLock.
func (c *Client) AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	token := uuid.New().String()
	ok, err := c.rdb.SetNX(ctx, lockKey(name), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// ReleaseLock releases a distributed lock held with token
func (c *Client) ReleaseLock(ctx context.Context, name, token string) error {
	if err := releaseLockScript.Run(ctx, c.rdb, []string{lockKey(name)}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock script failed: %w", err)
	}
	return nil
}
