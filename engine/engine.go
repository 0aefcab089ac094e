package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/guildmod/guildmod/configstore"
	"github.com/guildmod/guildmod/event"
	"github.com/guildmod/guildmod/spamtracker"
	"github.com/guildmod/guildmod/textutil"
	"github.com/guildmod/guildmod/trigger"
)

// Applied when a config does not set its own cooldown.
const DefaultCooldown = 10 * time.Second

// MatchResult describes one trigger firing, for consumption by the downstream action layer. Immutable; delivered at most once per firing.
type MatchResult struct {
	GuildID   string
	ActorID   string
	ChannelID string
	Kind      trigger.Kind
	// The specific matched substrings or entities, for auditability.
	Matched []string
	// Window total at firing time, for windowed kinds.
	Count   int
	Event   *event.Event
	FiredAt time.Time
}

// Notifier delivers out-of-band notifications about firings (eg, a webhook). Optional; delivery failures are counted, never fatal.
type Notifier interface {
	SendMatch(ctx context.Context, res *MatchResult) error
}

// Engine is the runtime for evaluating trigger configs against events and managing window and cooldown state.
//
// TODO: careful when initializing: several fields should not be null, even though they are pointer type.
type Engine struct {
	Logger    *slog.Logger
	Registry  *trigger.Registry
	Tracker   spamtracker.Tracker
	Configs   configstore.ConfigStore
	Cooldowns *Cooldowns
	// optional
	Notifier Notifier
	// zero means DefaultCooldown
	FallbackCooldown time.Duration
}

// ProcessEvent loads the guild's enabled trigger configs, evaluates them against the event, and forwards any matches to the notifier. The per-event panic recovery means no error from one event can drop the evaluation of another.
func (e *Engine) ProcessEvent(ctx context.Context, evt *event.Event) (results []MatchResult, err error) {
	// similar to an HTTP server, we want to recover any panics from rule execution
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Error("event evaluation exception", "err", r, "guild", evt.GuildID, "actor", evt.ActorID, "type", evt.Kind)
			eventErrorCount.WithLabelValues(string(evt.Kind)).Inc()
		}
	}()
	start := time.Now()
	defer func() {
		eventProcessDuration.WithLabelValues(string(evt.Kind)).Observe(time.Since(start).Seconds())
	}()
	eventProcessCount.WithLabelValues(string(evt.Kind)).Inc()

	configs, err := e.Configs.GetEnabledTriggerConfigs(ctx, evt.GuildID)
	if err != nil {
		eventErrorCount.WithLabelValues(string(evt.Kind)).Inc()
		return nil, err
	}

	results = e.Evaluate(ctx, evt, configs)

	if e.Notifier != nil {
		for i := range results {
			if err := e.Notifier.SendMatch(ctx, &results[i]); err != nil {
				notifyErrorCount.Inc()
				e.Logger.Warn("match notification failed", "err", err, "kind", results[i].Kind)
			}
		}
	}
	return results, nil
}

// Evaluate runs every config against the event, in the tenant's declared order, and returns the matches. Failures in one kind's matcher are isolated: they are logged and counted, and evaluation of the remaining kinds continues.
func (e *Engine) Evaluate(ctx context.Context, evt *event.Event, configs []trigger.Config) []MatchResult {
	var results []MatchResult
	for _, cfg := range configs {
		kind := cfg.TriggerKind()
		spec, err := e.Registry.Get(kind)
		if err != nil {
			// validated configs should never carry an unknown kind; reject the config, not the event
			e.Logger.Warn("skipping config with unknown trigger kind", "kind", kind)
			continue
		}
		if !spec.AcceptsEvent(evt.Kind) {
			continue
		}
		// the claim is held across the matcher run, so concurrent events for the same key cannot both pass the gate before either records its firing
		claim, ok := e.Cooldowns.Claim(evt.GuildID, evt.ActorID, kind, evt.Timestamp)
		if !ok {
			cooldownSkipCount.WithLabelValues(string(kind)).Inc()
			continue
		}

		details := e.runMatcher(ctx, spec, evt, cfg)
		if details == nil {
			claim.Release()
			continue
		}

		if spec.Windowed() {
			if sc, ok := cfg.(trigger.SpamConfig); ok && sc.ResetOnFire {
				if err := e.Tracker.Reset(ctx, evt.GuildID, evt.ActorID, string(kind)); err != nil {
					e.Logger.Warn("window reset failed", "err", err, "kind", kind)
				}
			}
		}

		cooldown := cfg.Cooldown()
		if cooldown == 0 {
			cooldown = e.FallbackCooldown
		}
		if cooldown == 0 {
			cooldown = DefaultCooldown
		}
		claim.Fire(evt.Timestamp.Add(cooldown))

		triggerFiredCount.WithLabelValues(string(kind)).Inc()
		e.Logger.Info("trigger fired",
			"guild", evt.GuildID,
			"actor", evt.ActorID,
			"kind", kind,
			"contentHash", textutil.HashOfString(evt.Text),
		)
		results = append(results, MatchResult{
			GuildID:   evt.GuildID,
			ActorID:   evt.ActorID,
			ChannelID: evt.ChannelID,
			Kind:      kind,
			Matched:   details.Matched,
			Count:     details.Count,
			Event:     evt,
			FiredAt:   evt.Timestamp,
		})
	}
	return results
}

func (e *Engine) runMatcher(ctx context.Context, spec *trigger.Spec, evt *event.Event, cfg trigger.Config) (details *trigger.MatchDetails) {
	defer func() {
		if r := recover(); r != nil {
			matcherPanicCount.WithLabelValues(string(spec.Kind)).Inc()
			e.Logger.Error("matcher panic", "err", r, "kind", spec.Kind, "guild", evt.GuildID)
			details = nil
		}
	}()

	var err error
	if spec.Windowed() {
		details, err = spec.MatchWindowed(ctx, evt, cfg, e.Tracker)
	} else {
		details, err = spec.Match(evt, cfg)
	}
	if err != nil {
		if errors.Is(err, trigger.ErrMatchTimeout) {
			matcherTimeoutCount.WithLabelValues(string(spec.Kind)).Inc()
			e.Logger.Warn("matcher timed out", "err", err, "kind", spec.Kind, "guild", evt.GuildID)
		} else {
			matcherErrorCount.WithLabelValues(string(spec.Kind)).Inc()
			e.Logger.Error("matcher failed", "err", err, "kind", spec.Kind, "guild", evt.GuildID)
		}
		return nil
	}
	return details
}

// RunSweeper periodically evicts idle window state and expired cooldowns until ctx is cancelled.
func (e *Engine) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := e.Tracker.Sweep(ctx, now); err != nil {
				e.Logger.Warn("tracker sweep failed", "err", err)
			}
			e.Cooldowns.Sweep(now)
		}
	}
}
