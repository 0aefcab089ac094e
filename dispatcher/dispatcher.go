// Package dispatcher receives raw platform events, normalizes them, and feeds the evaluation engine once per guild per event. Matches are forwarded to the external action layer through the ActionSink interface.
package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RussellLuo/slidingwindow"
	"github.com/bwmarrin/discordgo"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/guildmod/guildmod/engine"
	"github.com/guildmod/guildmod/event"
	"github.com/guildmod/guildmod/msgstore"
)

var (
	ErrShuttingDown = errors.New("dispatcher is shutting down")
	ErrRateLimited  = errors.New("guild event rate limit exceeded")
)

// ActionSink consumes fired matches. Each match is delivered at most once per firing, in per-guild declaration order.
type ActionSink interface {
	HandleMatches(ctx context.Context, results []engine.MatchResult) error
}

type Dispatcher struct {
	Logger *slog.Logger
	Engine *engine.Engine
	Sink   ActionSink
	// optional: persists messages for action-layer bulk operations
	Messages msgstore.MessageStore
	// max events per guild per second admitted for evaluation; zero disables the guard
	GuildEventRate int64

	limiters *xsync.MapOf[string, *slidingwindow.Limiter]
	tasks    *xsync.MapOf[uint64, *ScheduledTask]
	taskSeq  atomic.Uint64

	// closeMu orders every inflight.Add before Shutdown's Wait: Add only happens under the read lock with closed unset
	closeMu  sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

func New(logger *slog.Logger, eng *engine.Engine, sink ActionSink) *Dispatcher {
	return &Dispatcher{
		Logger:   logger,
		Engine:   eng,
		Sink:     sink,
		limiters: xsync.NewMapOf[string, *slidingwindow.Limiter](),
		tasks:    xsync.NewMapOf[uint64, *ScheduledTask](),
	}
}

// Bind registers gateway handlers on the session. Handlers normalize payloads and dispatch; they never block on network I/O beyond the optional message-store write.
func (d *Dispatcher) Bind(s *discordgo.Session) {
	s.AddHandler(func(sess *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot || m.GuildID == "" {
			return
		}
		ctx := context.Background()
		if d.Messages != nil {
			err := d.Messages.Put(ctx, msgstore.StoredMessage{
				ID:        m.ID,
				GuildID:   m.GuildID,
				ChannelID: m.ChannelID,
				AuthorID:  m.Author.ID,
				Content:   m.Content,
				CreatedAt: m.Timestamp,
			})
			if err != nil {
				d.Logger.Warn("persisting message failed", "err", err, "msg", m.ID)
			}
		}
		d.dispatchLogged(ctx, NormalizeMessage(m))
	})

	s.AddHandler(func(sess *discordgo.Session, g *discordgo.GuildMemberAdd) {
		if g.User == nil || g.User.Bot {
			return
		}
		d.dispatchLogged(context.Background(), NormalizeMemberJoin(g))
	})

	s.AddHandler(func(sess *discordgo.Session, g *discordgo.GuildMemberUpdate) {
		if g.User == nil || g.User.Bot {
			return
		}
		for _, evt := range NormalizeRoleChanges(g, time.Now()) {
			d.dispatchLogged(context.Background(), evt)
		}
	})
}

func (d *Dispatcher) dispatchLogged(ctx context.Context, evt *event.Event) {
	if err := d.Dispatch(ctx, evt); err != nil {
		if errors.Is(err, ErrRateLimited) {
			d.Logger.Warn("event dropped", "err", err, "guild", evt.GuildID, "type", evt.Kind)
		} else {
			d.Logger.Error("event dispatch failed", "err", err, "guild", evt.GuildID, "type", evt.Kind)
		}
	}
}

// Dispatch runs one normalized event through evaluation and forwards matches to the sink. Rejected with ErrShuttingDown after Shutdown begins; in-flight calls complete.
func (d *Dispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	if !d.begin() {
		dispatchDroppedCount.WithLabelValues("shutdown").Inc()
		return ErrShuttingDown
	}
	defer d.inflight.Done()
	if d.GuildEventRate > 0 && !d.guildLimiter(evt.GuildID).Allow() {
		dispatchDroppedCount.WithLabelValues("ratelimit").Inc()
		return ErrRateLimited
	}
	dispatchEventCount.WithLabelValues(string(evt.Kind)).Inc()

	results, err := d.Engine.ProcessEvent(ctx, evt)
	if err != nil {
		return err
	}
	if len(results) == 0 || d.Sink == nil {
		return nil
	}
	return d.Sink.HandleMatches(ctx, results)
}

// begin registers the call with the in-flight group, unless shutdown has started.
func (d *Dispatcher) begin() bool {
	d.closeMu.RLock()
	defer d.closeMu.RUnlock()
	if d.closed {
		return false
	}
	d.inflight.Add(1)
	return true
}

func (d *Dispatcher) guildLimiter(guildID string) *slidingwindow.Limiter {
	lim, _ := d.limiters.LoadOrCompute(guildID, func() *slidingwindow.Limiter {
		l, _ := slidingwindow.NewLimiter(time.Second, d.GuildEventRate, func() (slidingwindow.Window, slidingwindow.StopFunc) {
			return slidingwindow.NewLocalWindow()
		})
		return l
	})
	return lim
}

// Schedule runs fn after delay unless cancelled first, tracking the task so Shutdown can cancel pending work deterministically.
func (d *Dispatcher) Schedule(ctx context.Context, delay time.Duration, fn func(ctx context.Context)) *ScheduledTask {
	id := d.taskSeq.Add(1)
	task := newScheduledTask(ctx, delay, fn, func() {
		d.tasks.Delete(id)
	})
	d.tasks.Store(id, task)
	return task
}

// Shutdown stops admitting new events, cancels pending scheduled tasks, and waits for in-flight evaluations to complete (or ctx to expire).
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.closeMu.Lock()
	d.closed = true
	d.closeMu.Unlock()
	d.tasks.Range(func(id uint64, task *ScheduledTask) bool {
		task.Cancel()
		return true
	})

	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
