package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	familydomain "famconomy-go/internal/domain/family"
	"github.com/redis/go-redis/v9"
)

const opTimeout = 200 * time.Millisecond

// RedisFamilyCache is a best-effort cache: redis failures degrade to a miss
// rather than failing the request.
type RedisFamilyCache struct {
	client *redis.Client
	prefix string
}

func NewRedisFamilyCache(client *redis.Client, prefix string) *RedisFamilyCache {
	if prefix == "" {
		prefix = "family:user"
	}
	return &RedisFamilyCache{client: client, prefix: prefix}
}

func (c *RedisFamilyCache) GetByUserID(userID uint) (*familydomain.Family, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	payload, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		return nil, false
	}

	var family familydomain.Family
	if err := json.Unmarshal(payload, &family); err != nil {
		return nil, false
	}
	return &family, true
}

func (c *RedisFamilyCache) SetByUserID(userID uint, family *familydomain.Family, ttl time.Duration) {
	if family == nil || ttl <= 0 {
		c.DeleteByUserID(userID)
		return
	}

	payload, err := json.Marshal(family)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_ = c.client.Set(ctx, c.key(userID), payload, ttl).Err()
}

func (c *RedisFamilyCache) DeleteByUserID(userID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_ = c.client.Del(ctx, c.key(userID)).Err()
}

// Clear removes all cached entries under the prefix. SCAN keeps it safe on a
// shared instance.
func (c *RedisFamilyCache) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	iter := c.client.Scan(ctx, 0, c.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		_ = c.client.Del(ctx, iter.Val()).Err()
	}
}

func (c *RedisFamilyCache) key(userID uint) string {
	return fmt.Sprintf("%s:%d", c.prefix, userID)
}
