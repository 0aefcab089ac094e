package configstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildmod/guildmod/trigger"
)

func TestValidateRaw(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	registry := trigger.Default()

	cfg, err := ValidateRaw(registry, map[string]any{
		"kind":  "match_words",
		"words": []any{"badword"},
	})
	require.NoError(err)
	assert.Equal(trigger.KindMatchWords, cfg.TriggerKind())

	_, err = ValidateRaw(registry, map[string]any{"words": []any{"badword"}})
	assert.Error(err, "missing kind")

	_, err = ValidateRaw(registry, map[string]any{"kind": float64(7)})
	assert.Error(err, "non-string kind")

	_, err = ValidateRaw(registry, map[string]any{"kind": "no_such_kind"})
	assert.Error(err)
}

func TestValidateRawList(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	registry := trigger.Default()

	configs, err := ValidateRawList(registry, []map[string]any{
		{"kind": "match_words", "words": []any{"badword"}},
		{"kind": "message_spam", "threshold": float64(5), "window_size": float64(5000)},
	})
	require.NoError(err)
	require.Len(configs, 2)
	assert.Equal(trigger.KindMatchWords, configs[0].TriggerKind())
	assert.Equal(trigger.KindMessageSpam, configs[1].TriggerKind())

	// one bad entry rejects the whole list
	_, err = ValidateRawList(registry, []map[string]any{
		{"kind": "match_words", "words": []any{"badword"}},
		{"kind": "match_words", "words": []any{}},
	})
	require.Error(err)
	assert.Contains(err.Error(), "config entry 1")
}

func TestMemConfigStore(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	registry := trigger.Default()
	store := NewMemConfigStore()
	ctx := context.Background()

	configs, err := store.GetEnabledTriggerConfigs(ctx, "guild1")
	require.NoError(err)
	assert.Empty(configs, "unknown guild has no configs")

	cfg, err := registry.ValidateConfig(trigger.KindMatchWords, map[string]any{"words": []any{"x"}})
	require.NoError(err)
	store.Put("guild1", []trigger.Config{cfg})

	configs, err = store.GetEnabledTriggerConfigs(ctx, "guild1")
	require.NoError(err)
	require.Len(configs, 1)
	assert.Equal(trigger.KindMatchWords, configs[0].TriggerKind())
}

func TestMemConfigStoreLoadFromFileJSON(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	registry := trigger.Default()
	p := filepath.Join(t.TempDir(), "configs.json")
	require.NoError(os.WriteFile(p, []byte(`{
		"guild1": [
			{"kind": "match_words", "words": ["badword"]},
			{"kind": "message_spam", "threshold": 5, "window_size": 5000}
		],
		"guild2": [
			{"kind": "match_invites", "allow_codes": ["ourserver"]}
		]
	}`), 0644))

	store := NewMemConfigStore()
	require.NoError(store.LoadFromFileJSON(registry, p))

	configs, err := store.GetEnabledTriggerConfigs(context.Background(), "guild1")
	require.NoError(err)
	require.Len(configs, 2)
	assert.Equal(trigger.KindMatchWords, configs[0].TriggerKind())

	configs, err = store.GetEnabledTriggerConfigs(context.Background(), "guild2")
	require.NoError(err)
	assert.Len(configs, 1)

	// an invalid entry anywhere fails the whole load
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(os.WriteFile(bad, []byte(`{"guild1": [{"kind": "match_words", "words": []}]}`), 0644))
	assert.Error(NewMemConfigStore().LoadFromFileJSON(registry, bad))
}

// countingStore counts reads through to the inner store.
type countingStore struct {
	inner ConfigStore
	reads int
}

func (s *countingStore) GetEnabledTriggerConfigs(ctx context.Context, guildID string) ([]trigger.Config, error) {
	s.reads++
	return s.inner.GetEnabledTriggerConfigs(ctx, guildID)
}

func TestCachedConfigStore(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	registry := trigger.Default()
	mem := NewMemConfigStore()
	cfg, err := registry.ValidateConfig(trigger.KindMatchWords, map[string]any{"words": []any{"x"}})
	require.NoError(err)
	mem.Put("guild1", []trigger.Config{cfg})

	counting := &countingStore{inner: mem}
	cached := NewCachedConfigStore(counting, 100, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		configs, err := cached.GetEnabledTriggerConfigs(ctx, "guild1")
		require.NoError(err)
		assert.Len(configs, 1)
	}
	assert.Equal(1, counting.reads, "repeat reads are served from cache")

	cached.Invalidate("guild1")
	_, err = cached.GetEnabledTriggerConfigs(ctx, "guild1")
	require.NoError(err)
	assert.Equal(2, counting.reads, "invalidation forces a re-read")
}
