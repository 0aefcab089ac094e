package spamtracker

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultIdleTTL is how long a key must be untouched before Sweep evicts it. Must be at least the largest window any tenant configures, so eviction never discards live points.
const DefaultIdleTTL = 15 * time.Minute

type point struct {
	ts     time.Time
	weight int
}

// Per-key window state. The mutex serializes adds for the key; the dead flag resolves the race between Reset/Sweep eviction and a concurrent AddPoint that already holds a pointer to the entry.
type windowState struct {
	mu          sync.Mutex
	dead        bool
	points      []point
	sum         int
	newest      time.Time
	lastTouched time.Time
}

// MemTracker keeps window state in process memory. Keys live in a concurrent map so unrelated guilds and actors never contend on a shared lock.
type MemTracker struct {
	entries *xsync.MapOf[string, *windowState]
	clock   Clock
	idleTTL time.Duration
}

var _ Tracker = (*MemTracker)(nil)

func NewMemTracker() *MemTracker {
	return NewMemTrackerWithClock(SystemClock{})
}

func NewMemTrackerWithClock(clock Clock) *MemTracker {
	return &MemTracker{
		entries: xsync.NewMapOf[string, *windowState](),
		clock:   clock,
		idleTTL: DefaultIdleTTL,
	}
}

func (t *MemTracker) AddPoint(ctx context.Context, guildID, actorID, name string, ts time.Time, weight int, window time.Duration) (int, error) {
	now := t.clock.Now()
	ts = clampTimestamp(now, ts)
	k := pointKey(guildID, actorID, name)

	for {
		st, _ := t.entries.LoadOrCompute(k, func() *windowState {
			return &windowState{}
		})
		st.mu.Lock()
		if st.dead {
			// lost a race with Reset or Sweep; the entry is already unlinked from the map
			st.mu.Unlock()
			continue
		}

		// tail append in the common case; walk back for small out-of-order skew
		i := len(st.points)
		for i > 0 && st.points[i-1].ts.After(ts) {
			i--
		}
		st.points = slices.Insert(st.points, i, point{ts: ts, weight: weight})
		st.sum += weight
		if ts.After(st.newest) {
			st.newest = ts
		}

		// expired points are only ever at the head
		cutoff := st.newest.Add(-window)
		for len(st.points) > 0 && st.points[0].ts.Before(cutoff) {
			st.sum -= st.points[0].weight
			st.points = st.points[1:]
		}

		st.lastTouched = now
		sum := st.sum
		st.mu.Unlock()
		return sum, nil
	}
}

func (t *MemTracker) Reset(ctx context.Context, guildID, actorID, name string) error {
	st, ok := t.entries.LoadAndDelete(pointKey(guildID, actorID, name))
	if !ok {
		return nil
	}
	st.mu.Lock()
	st.dead = true
	st.points = nil
	st.sum = 0
	st.mu.Unlock()
	return nil
}

func (t *MemTracker) Sweep(ctx context.Context, now time.Time) error {
	t.entries.Range(func(k string, st *windowState) bool {
		st.mu.Lock()
		if !st.dead && now.Sub(st.lastTouched) > t.idleTTL {
			st.dead = true
			st.points = nil
			st.sum = 0
			t.entries.Delete(k)
		}
		st.mu.Unlock()
		return true
	})
	return nil
}

// Len reports the number of live keys, for tests and metrics.
func (t *MemTracker) Len() int {
	return t.entries.Size()
}
