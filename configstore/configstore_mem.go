package configstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/guildmod/guildmod/trigger"
)

// MemConfigStore holds validated config lists in process memory. Suitable for tests and single-process deployments where configs are loaded from a JSON file at startup.
type MemConfigStore struct {
	mu      sync.RWMutex
	configs map[string][]trigger.Config
}

var _ ConfigStore = (*MemConfigStore)(nil)

func NewMemConfigStore() *MemConfigStore {
	return &MemConfigStore{
		configs: make(map[string][]trigger.Config),
	}
}

func (s *MemConfigStore) GetEnabledTriggerConfigs(ctx context.Context, guildID string) ([]trigger.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configs[guildID], nil
}

// Put replaces the guild's config list. The slice is stored as-is; callers must not mutate it afterwards.
func (s *MemConfigStore) Put(guildID string, configs []trigger.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[guildID] = configs
}

// LoadFromFileJSON reads a mapping of guild ID to declared config list, validating every entry against the registry.
func (s *MemConfigStore) LoadFromFileJSON(registry *trigger.Registry, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var guilds map[string][]map[string]any
	if err := json.Unmarshal(raw, &guilds); err != nil {
		return err
	}

	for guildID, raws := range guilds {
		configs, err := ValidateRawList(registry, raws)
		if err != nil {
			return fmt.Errorf("guild %s: %w", guildID, err)
		}
		s.Put(guildID, configs)
	}
	return nil
}
