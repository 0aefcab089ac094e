package trigger

import (
	"context"
	"time"

	"github.com/guildmod/guildmod/event"
)

// Kind names one trigger type in the fixed catalog. New kinds are added only by registering a new Spec at startup.
type Kind string

const (
	// instantaneous kinds: match or don't, no state across events
	KindMatchWords          Kind = "match_words"
	KindMatchRegex          Kind = "match_regex"
	KindMatchInvites        Kind = "match_invites"
	KindMatchLinks          Kind = "match_links"
	KindMatchAttachmentType Kind = "match_attachment_type"
	KindMemberJoin          Kind = "member_join"
	KindRoleAdded           Kind = "role_added"
	KindRoleRemoved         Kind = "role_removed"

	// windowed kinds: accumulate weighted points per actor over a sliding window
	KindMessageSpam    Kind = "message_spam"
	KindMentionSpam    Kind = "mention_spam"
	KindLinkSpam       Kind = "link_spam"
	KindAttachmentSpam Kind = "attachment_spam"
	KindEmojiSpam      Kind = "emoji_spam"
	KindLineSpam       Kind = "line_spam"
	KindCharacterSpam  Kind = "character_spam"
	KindMemberJoinSpam Kind = "member_join_spam"
)

// Validated, read-only configuration for one enabled trigger instance. Concrete type is kind-specific; matchers type-assert to their own config type.
type Config interface {
	TriggerKind() Kind
	// Minimum time between successive firings for the same actor. Zero means the engine default applies.
	Cooldown() time.Duration
}

// Fields shared by every trigger config. Embedded by the kind-specific config types.
type BaseConfig struct {
	Kind        Kind
	CooldownDur time.Duration
}

func (c BaseConfig) TriggerKind() Kind       { return c.Kind }
func (c BaseConfig) Cooldown() time.Duration { return c.CooldownDur }

// Describes why a trigger fired, for audit logs and the downstream action layer.
type MatchDetails struct {
	// The specific matched substrings or entity IDs (words, invite codes, URLs, role IDs).
	Matched []string
	// For windowed kinds, the window total at the moment of firing.
	Count int
}

// Counter records spam weight for a (guild, actor, kind) key and reports the current window total. Implemented by the spamtracker package.
type Counter interface {
	AddPoint(ctx context.Context, guildID, actorID, name string, ts time.Time, weight int, window time.Duration) (int, error)
}

type InstantFunc = func(evt *event.Event, cfg Config) (*MatchDetails, error)
type WindowedFunc = func(ctx context.Context, evt *event.Event, cfg Config, counter Counter) (*MatchDetails, error)

// Spec declares one trigger kind: which events it reacts to, how its raw config is validated, and its matching semantics. Exactly one of Match or MatchWindowed is set.
type Spec struct {
	Kind     Kind
	Accepts  []event.Kind
	Validate func(raw map[string]any) (Config, error)

	Match         InstantFunc
	MatchWindowed WindowedFunc
}

func (s *Spec) Windowed() bool {
	return s.MatchWindowed != nil
}

func (s *Spec) AcceptsEvent(k event.Kind) bool {
	for _, a := range s.Accepts {
		if a == k {
			return true
		}
	}
	return false
}
