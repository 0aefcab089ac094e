// Package spamtracker implements sliding-window spam counting, keyed by (guild, actor, trigger kind).
//
// Window state is owned exclusively by the tracker and never exposed outside it except as derived counts. The in-memory implementation is the default; a Redis-backed implementation with identical semantics exists for multi-process deployments.
package spamtracker

import (
	"context"
	"time"
)

// Tracker is the counting contract consumed by windowed trigger matchers.
//
// AddPoint must be linearizable per key: concurrent adds for the same key serialize with no lost updates, while adds to different keys proceed without blocking each other.
type Tracker interface {
	// AddPoint appends a weighted point, purges points that have aged out of the window, and returns the sum of weights remaining in the window.
	AddPoint(ctx context.Context, guildID, actorID, name string, ts time.Time, weight int, window time.Duration) (int, error)
	// Reset clears all state for a key, used after a trigger fires so one burst fires exactly once.
	Reset(ctx context.Context, guildID, actorID, name string) error
	// Sweep evicts state for keys idle longer than the tracker's idle TTL. Runs on a background cadence, never on the hot path.
	Sweep(ctx context.Context, now time.Time) error
}

// Clock is the injected time source, so the counting algorithm never reads wall-clock directly.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// SkewTolerance bounds how far an event timestamp may deviate from the tracker's clock before it is clamped to now. Out-of-order arrival within the tolerance is inserted in order; purge and sum depend only on age, so correctness is unaffected.
const SkewTolerance = 2 * time.Second

func clampTimestamp(now, ts time.Time) time.Time {
	if d := now.Sub(ts); d > SkewTolerance || d < -SkewTolerance {
		return now
	}
	return ts
}

func pointKey(guildID, actorID, name string) string {
	return guildID + "/" + actorID + "/" + name
}
