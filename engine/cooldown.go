package engine

import (
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/guildmod/guildmod/trigger"
)

// Per-key cooldown state. The mutex is held by a claim across the whole check-evaluate-fire step, so concurrent events for the same key serialize; the dead flag resolves the race with Sweep eviction, same as the spam tracker's entries.
type cooldownEntry struct {
	mu    sync.Mutex
	dead  bool
	until time.Time
}

// Cooldowns tracks, per (guild, actor, kind), the time before which the trigger must not fire again. Suppression is independent of whether the underlying window count still exceeds its threshold.
type Cooldowns struct {
	entries *xsync.MapOf[string, *cooldownEntry]
}

func NewCooldowns() *Cooldowns {
	return &Cooldowns{entries: xsync.NewMapOf[string, *cooldownEntry]()}
}

func cooldownKey(guildID, actorID string, kind trigger.Kind) string {
	return guildID + "/" + actorID + "/" + string(kind)
}

// CooldownClaim is exclusive ownership of one key, granted by Claim. The holder must finish with exactly one of Fire or Release.
type CooldownClaim struct {
	entry *cooldownEntry
}

// Fire records the new cooldown expiry and releases the claim.
func (cl *CooldownClaim) Fire(until time.Time) {
	cl.entry.until = until
	cl.entry.mu.Unlock()
}

// Release gives up the claim without firing.
func (cl *CooldownClaim) Release() {
	cl.entry.mu.Unlock()
}

// Claim locks the key and reports whether the cooldown is inactive at the given time. On success the caller owns the key until Fire or Release, so the cooldown check, the matcher run, and the cooldown write form one atomic step per key: a concurrent evaluation for the same key blocks here and then observes the first one's expiry.
func (c *Cooldowns) Claim(guildID, actorID string, kind trigger.Kind, at time.Time) (*CooldownClaim, bool) {
	k := cooldownKey(guildID, actorID, kind)
	for {
		entry, _ := c.entries.LoadOrCompute(k, func() *cooldownEntry {
			return &cooldownEntry{}
		})
		entry.mu.Lock()
		if entry.dead {
			// lost a race with Sweep; the entry is already unlinked from the map
			entry.mu.Unlock()
			continue
		}
		if at.Before(entry.until) {
			entry.mu.Unlock()
			return nil, false
		}
		return &CooldownClaim{entry: entry}, true
	}
}

// Sweep drops expired entries to bound memory across the tenant population. A key whose claim is still held is skipped until the claim settles.
func (c *Cooldowns) Sweep(now time.Time) {
	c.entries.Range(func(k string, entry *cooldownEntry) bool {
		if !entry.mu.TryLock() {
			return true
		}
		if !entry.dead && now.After(entry.until) {
			entry.dead = true
			c.entries.Delete(k)
		}
		entry.mu.Unlock()
		return true
	})
}
