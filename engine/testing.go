package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/guildmod/guildmod/configstore"
	"github.com/guildmod/guildmod/spamtracker"
	"github.com/guildmod/guildmod/trigger"
)

// FakeClock is a manually-advanced clock for deterministic window tests. Intentionally exported, for use in other packages.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// EngineTestFixture returns an engine wired to in-memory stores, a fake clock, and the full built-in trigger catalog.
func EngineTestFixture(clock *FakeClock) (*Engine, *configstore.MemConfigStore) {
	registry := trigger.Default()
	configs := configstore.NewMemConfigStore()
	eng := &Engine{
		Logger:    slog.Default(),
		Registry:  registry,
		Tracker:   spamtracker.NewMemTrackerWithClock(clock),
		Configs:   configs,
		Cooldowns: NewCooldowns(),
	}
	return eng, configs
}

// MustValidate builds a validated config or panics; test helper.
func MustValidate(registry *trigger.Registry, kind trigger.Kind, raw map[string]any) trigger.Config {
	cfg, err := registry.ValidateConfig(kind, raw)
	if err != nil {
		panic(err)
	}
	return cfg
}
