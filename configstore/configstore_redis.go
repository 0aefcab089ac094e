package configstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/guildmod/guildmod/trigger"
)

var redisConfigPrefix string = "triggercfg/"

// RedisConfigStore reads declared config lists from Redis, where the external config layer writes them as JSON arrays. Entries are validated on every read; wrap with NewCachedConfigStore to avoid re-validating on the hot path.
type RedisConfigStore struct {
	Client   *redis.Client
	Registry *trigger.Registry
}

var _ ConfigStore = (*RedisConfigStore)(nil)

func NewRedisConfigStore(redisURL string, registry *trigger.Registry) (*RedisConfigStore, error) {
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
	return &RedisConfigStore{Client: rdb, Registry: registry}, nil
}

func (s *RedisConfigStore) GetEnabledTriggerConfigs(ctx context.Context, guildID string) ([]trigger.Config, error) {
	raw, err := s.Client.Get(ctx, redisConfigPrefix+guildID).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var raws []map[string]any
	if err := json.Unmarshal(raw, &raws); err != nil {
		return nil, fmt.Errorf("decoding configs for guild %s: %w", guildID, err)
	}
	return ValidateRawList(s.Registry, raws)
}
