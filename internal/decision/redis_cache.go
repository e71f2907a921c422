package decision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
)

// redisCache is the shared-cache variant picked when REDIS_ADDR is set, for
// deployments running more than one backend replica. Redis TTLs handle the
// eviction the in-memory map never does. Redis trouble is treated as a cache
// miss, never an error the decision path can see.
type redisCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisCache(log *logger.Logger, addr string, ttl time.Duration) (Cache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisCache{
		log: log.With("service", "RedisDecisionCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func decisionKey(experimentID uuid.UUID) string {
	return "decision:" + experimentID.String()
}

func (c *redisCache) Get(ctx context.Context, experimentID uuid.UUID) (string, bool) {
	if c.ttl <= 0 {
		return "", false
	}
	val, err := c.rdb.Get(ctx, decisionKey(experimentID)).Result()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warn("redis get failed, treating as miss", "experiment_id", experimentID, "error", err)
		}
		return "", false
	}
	return val, true
}

func (c *redisCache) Set(ctx context.Context, experimentID uuid.UUID, decision string) {
	if c.ttl <= 0 {
		return
	}
	if err := c.rdb.Set(ctx, decisionKey(experimentID), decision, c.ttl).Err(); err != nil {
		c.log.Warn("redis set failed", "experiment_id", experimentID, "error", err)
	}
}
