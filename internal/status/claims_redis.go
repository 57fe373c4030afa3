package status

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"crm-gateway/pkg/utils"
)

// RedisClaims backs the replay-suppression ClaimStore with Redis.
// Fail-open semantics are the caller's job; this type just reports errors.

type RedisClaims struct {
	rdb *redis.Client
}

func NewRedisClaims(rdb *redis.Client) *RedisClaims { return &RedisClaims{rdb: rdb} }

func (c *RedisClaims) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return utils.ClaimOnce(ctx, c.rdb, key, ttl)
}

func (c *RedisClaims) Release(ctx context.Context, key string) error {
	return utils.ReleaseClaim(ctx, c.rdb, key)
}
