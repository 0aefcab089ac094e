package trigger

import (
	"context"
	"fmt"

	"github.com/guildmod/guildmod/event"
)

// Weight extraction per windowed kind: how much one event contributes to the actor's window.
var spamWeights = map[Kind]func(evt *event.Event) int{
	KindMessageSpam: func(evt *event.Event) int { return 1 },
	KindMentionSpam: func(evt *event.Event) int {
		return len(evt.MentionUsers) + len(evt.MentionRoles)
	},
	KindLinkSpam:       func(evt *event.Event) int { return len(evt.Links) },
	KindAttachmentSpam: func(evt *event.Event) int { return len(evt.Attachments) },
	KindEmojiSpam:      func(evt *event.Event) int { return evt.EmojiCount },
	KindLineSpam:       func(evt *event.Event) int { return evt.LineCount },
	KindMemberJoinSpam: func(evt *event.Event) int { return 1 },
	// character_spam weight depends on the configured baseline, handled in matchSpam
}

func matchSpam(kind Kind) WindowedFunc {
	return func(ctx context.Context, evt *event.Event, cfg Config, counter Counter) (*MatchDetails, error) {
		c, ok := cfg.(SpamConfig)
		if !ok {
			return nil, fmt.Errorf("mismatch between trigger kind (%s) and config type", cfg.TriggerKind())
		}

		var weight int
		if kind == KindCharacterSpam {
			weight = evt.CharCount - c.Baseline
		} else {
			weight = spamWeights[kind](evt)
		}
		if weight <= 0 {
			return nil, nil
		}

		count, err := counter.AddPoint(ctx, evt.GuildID, evt.ActorID, string(kind), evt.Timestamp, weight, c.Window)
		if err != nil {
			return nil, fmt.Errorf("recording spam point: %w", err)
		}
		if count < c.Threshold {
			return nil, nil
		}
		return &MatchDetails{
			Count:   count,
			Matched: []string{fmt.Sprintf("%d points within %s", count, c.Window)},
		}, nil
	}
}
