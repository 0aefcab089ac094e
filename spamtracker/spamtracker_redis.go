package spamtracker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisSpamPrefix string = "spam/"

// RedisTracker keeps window state in Redis sorted sets, scored by point timestamp, so multiple engine processes share one view of each actor's window. Keys expire on their own; Sweep is a no-op.
type RedisTracker struct {
	Client *redis.Client
	clock  Clock
	seq    atomic.Uint64
}

var _ Tracker = (*RedisTracker)(nil)

func NewRedisTracker(redisURL string) (*RedisTracker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisTracker{
		Client: rdb,
		clock:  SystemClock{},
	}, nil
}

func (t *RedisTracker) AddPoint(ctx context.Context, guildID, actorID, name string, ts time.Time, weight int, window time.Duration) (int, error) {
	now := t.clock.Now()
	ts = clampTimestamp(now, ts)
	key := redisSpamPrefix + pointKey(guildID, actorID, name)
	cutoff := ts.Add(-window).UnixMilli()

	// member encodes the weight; the sequence suffix keeps same-millisecond points distinct
	member := fmt.Sprintf("%d/%d/%d", ts.UnixMilli(), weight, t.seq.Add(1))

	// append, purge, and refresh expiry in a single redis round-trip
	multi := t.Client.Pipeline()
	multi.ZAdd(ctx, key, redis.Z{Score: float64(ts.UnixMilli()), Member: member})
	multi.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("(%d", cutoff))
	multi.Expire(ctx, key, window+DefaultIdleTTL)
	if _, err := multi.Exec(ctx); err != nil {
		return 0, err
	}

	members, err := t.Client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: strconv.FormatInt(cutoff, 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return 0, err
	}
	sum := 0
	for _, m := range members {
		parts := strings.SplitN(m, "/", 3)
		if len(parts) != 3 {
			continue
		}
		w, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		sum += w
	}
	return sum, nil
}

func (t *RedisTracker) Reset(ctx context.Context, guildID, actorID, name string) error {
	return t.Client.Del(ctx, redisSpamPrefix+pointKey(guildID, actorID, name)).Err()
}

func (t *RedisTracker) Sweep(ctx context.Context, now time.Time) error {
	// redis expires window keys itself
	return nil
}
