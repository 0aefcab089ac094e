package configstore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/guildmod/guildmod/trigger"
)

// CachedConfigStore caches validated config snapshots per guild, with explicit invalidation for when the external config layer reports a change.
type CachedConfigStore struct {
	inner ConfigStore
	data  *expirable.LRU[string, []trigger.Config]
}

var _ ConfigStore = (*CachedConfigStore)(nil)

func NewCachedConfigStore(inner ConfigStore, capacity int, ttl time.Duration) *CachedConfigStore {
	return &CachedConfigStore{
		inner: inner,
		data:  expirable.NewLRU[string, []trigger.Config](capacity, nil, ttl),
	}
}

func (s *CachedConfigStore) GetEnabledTriggerConfigs(ctx context.Context, guildID string) ([]trigger.Config, error) {
	if configs, ok := s.data.Get(guildID); ok {
		return configs, nil
	}
	configs, err := s.inner.GetEnabledTriggerConfigs(ctx, guildID)
	if err != nil {
		return nil, err
	}
	s.data.Add(guildID, configs)
	return configs, nil
}

func (s *CachedConfigStore) Invalidate(guildID string) {
	s.data.Remove(guildID)
}
