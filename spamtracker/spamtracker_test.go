package spamtracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemTrackerWindowSum(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	clock := newFakeClock()
	tr := NewMemTrackerWithClock(clock)
	ctx := context.Background()
	window := 5 * time.Second

	// five points within 3s of a 5s window all stay in the sum
	for i := 1; i <= 5; i++ {
		count, err := tr.AddPoint(ctx, "g1", "a1", "message_spam", clock.Now(), 1, window)
		require.NoError(err)
		assert.Equal(i, count)
		clock.Advance(750 * time.Millisecond)
	}

	// a point far outside the window starts counting from scratch
	clock.Advance(10 * time.Second)
	count, err := tr.AddPoint(ctx, "g1", "a1", "message_spam", clock.Now(), 1, window)
	require.NoError(err)
	assert.Equal(1, count)
}

func TestMemTrackerWeights(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	clock := newFakeClock()
	tr := NewMemTrackerWithClock(clock)
	ctx := context.Background()

	count, err := tr.AddPoint(ctx, "g1", "a1", "mention_spam", clock.Now(), 3, time.Minute)
	require.NoError(err)
	assert.Equal(3, count)

	clock.Advance(time.Second)
	count, err = tr.AddPoint(ctx, "g1", "a1", "mention_spam", clock.Now(), 4, time.Minute)
	require.NoError(err)
	assert.Equal(7, count)
}

func TestMemTrackerKeyIsolation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	clock := newFakeClock()
	tr := NewMemTrackerWithClock(clock)
	ctx := context.Background()

	_, err := tr.AddPoint(ctx, "g1", "a1", "message_spam", clock.Now(), 1, time.Minute)
	require.NoError(err)

	// different actor, guild, and kind each get their own window
	count, err := tr.AddPoint(ctx, "g1", "a2", "message_spam", clock.Now(), 1, time.Minute)
	require.NoError(err)
	assert.Equal(1, count)

	count, err = tr.AddPoint(ctx, "g2", "a1", "message_spam", clock.Now(), 1, time.Minute)
	require.NoError(err)
	assert.Equal(1, count)

	count, err = tr.AddPoint(ctx, "g1", "a1", "link_spam", clock.Now(), 1, time.Minute)
	require.NoError(err)
	assert.Equal(1, count)
}

func TestMemTrackerOutOfOrder(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	clock := newFakeClock()
	tr := NewMemTrackerWithClock(clock)
	ctx := context.Background()
	window := 5 * time.Second

	now := clock.Now()
	_, err := tr.AddPoint(ctx, "g1", "a1", "message_spam", now, 1, window)
	require.NoError(err)

	// an event timestamped slightly in the past, within the skew tolerance, still counts
	count, err := tr.AddPoint(ctx, "g1", "a1", "message_spam", now.Add(-time.Second), 1, window)
	require.NoError(err)
	assert.Equal(2, count)

	// far beyond the tolerance it is clamped to now rather than dropped
	count, err = tr.AddPoint(ctx, "g1", "a1", "message_spam", now.Add(-time.Hour), 1, window)
	require.NoError(err)
	assert.Equal(3, count)
}

func TestMemTrackerReset(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	clock := newFakeClock()
	tr := NewMemTrackerWithClock(clock)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := tr.AddPoint(ctx, "g1", "a1", "message_spam", clock.Now(), 1, time.Minute)
		require.NoError(err)
	}
	require.NoError(tr.Reset(ctx, "g1", "a1", "message_spam"))

	count, err := tr.AddPoint(ctx, "g1", "a1", "message_spam", clock.Now(), 1, time.Minute)
	require.NoError(err)
	assert.Equal(1, count)

	// resetting a missing key is a no-op
	assert.NoError(tr.Reset(ctx, "g9", "a9", "message_spam"))
}

func TestMemTrackerSweep(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	clock := newFakeClock()
	tr := NewMemTrackerWithClock(clock)
	ctx := context.Background()

	_, err := tr.AddPoint(ctx, "g1", "a1", "message_spam", clock.Now(), 1, time.Minute)
	require.NoError(err)
	_, err = tr.AddPoint(ctx, "g1", "a2", "message_spam", clock.Now(), 1, time.Minute)
	require.NoError(err)
	assert.Equal(2, tr.Len())

	// touch one key so only the other goes idle
	clock.Advance(10 * time.Minute)
	_, err = tr.AddPoint(ctx, "g1", "a1", "message_spam", clock.Now(), 1, time.Minute)
	require.NoError(err)

	clock.Advance(10 * time.Minute)
	require.NoError(tr.Sweep(ctx, clock.Now()))
	assert.Equal(1, tr.Len())

	// sweeping twice changes nothing
	require.NoError(tr.Sweep(ctx, clock.Now()))
	assert.Equal(1, tr.Len())
}

func TestMemTrackerConcurrentAdds(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	tr := NewMemTracker()
	ctx := context.Background()

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := tr.AddPoint(ctx, "g1", "a1", "message_spam", time.Now(), 1, time.Hour)
				assert.NoError(err)
			}
		}()
	}
	wg.Wait()

	count, err := tr.AddPoint(ctx, "g1", "a1", "message_spam", time.Now(), 1, time.Hour)
	require.NoError(err)
	assert.Equal(workers*perWorker+1, count, "no lost updates under concurrent adds")
}

func TestMemTrackerConcurrentResetAdd(t *testing.T) {
	require := require.New(t)

	tr := NewMemTracker()
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_, _ = tr.AddPoint(ctx, "g1", "a1", "message_spam", time.Now(), 1, time.Hour)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = tr.Reset(ctx, "g1", "a1", "message_spam")
			}
		}()
	}
	wg.Wait()

	// the tracker must stay usable after the churn
	count, err := tr.AddPoint(ctx, "g1", "a1", "message_spam", time.Now(), 1, time.Hour)
	require.NoError(err)
	require.GreaterOrEqual(count, 1)
}
