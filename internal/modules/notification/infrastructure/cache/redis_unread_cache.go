package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultUnreadTTL = 5 * time.Minute
	generationTTL    = 24 * time.Hour
)

var errStaleGeneration = errors.New("unread generation moved")

// RedisUnreadCache keeps per-user unread counts so the bell badge does not
// hit MySQL on every poll. Failures are logged and treated as misses.
//
// Every invalidation bumps a per-user generation. A count read from MySQL is
// only stored while the generation it was read under is still current, so a
// slow reader cannot overwrite a newer invalidation with an old count.
type RedisUnreadCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisUnreadCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisUnreadCache {
	if ttl <= 0 {
		ttl = defaultUnreadTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisUnreadCache{rdb: rdb, ttl: ttl, logger: logger}
}

func unreadKey(userID int64) string {
	return fmt.Sprintf("fms:notifications:unread:%d", userID)
}

func generationKey(userID int64) string {
	return fmt.Sprintf("fms:notifications:unread-gen:%d", userID)
}

// Get returns the cached count. On a miss it returns the generation to hand
// back to Set; a negative generation means the cache is unusable.
func (c *RedisUnreadCache) Get(ctx context.Context, userID int64) (int, int64, bool) {
	vals, err := c.rdb.MGet(ctx, unreadKey(userID), generationKey(userID)).Result()
	if err != nil {
		c.logger.Warn("unread cache get failed", "user_id", userID, "error", err)
		return 0, -1, false
	}
	gen, ok := parseInt(vals[1])
	if !ok {
		gen = 0
	}
	n, ok := parseInt(vals[0])
	if !ok {
		return 0, gen, false
	}
	return int(n), gen, true
}

// Set stores count when the user's generation still equals gen.
func (c *RedisUnreadCache) Set(ctx context.Context, userID int64, count int, gen int64) {
	if gen < 0 {
		return
	}
	genKey := generationKey(userID)
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, unreadKey(userID), count, c.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("unread cache fill skipped, count changed meanwhile", "user_id", userID)
	default:
		c.logger.Warn("unread cache set failed", "user_id", userID, "error", err)
	}
}

func (c *RedisUnreadCache) Invalidate(ctx context.Context, userID int64) {
	genKey := generationKey(userID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, unreadKey(userID))
		return nil
	})
	if err != nil {
		c.logger.Warn("unread cache invalidate failed", "user_id", userID, "error", err)
	}
}

func parseInt(v any) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
