package dispatcher

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/guildmod/guildmod/event"
	"github.com/guildmod/guildmod/textutil"
)

// Normalization from raw gateway payloads to engine events. Pure parsing, no I/O: all derived fields are extracted here so matchers never parse.

func NormalizeMessage(m *discordgo.MessageCreate) *event.Event {
	evt := &event.Event{
		Kind:      event.KindMessageCreate,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		Timestamp: m.Timestamp,
		Text:      m.Content,

		Links:       textutil.ExtractURLs(m.Content),
		InviteCodes: textutil.ExtractInviteCodes(m.Content),
		LineCount:   textutil.CountLines(m.Content),
		CharCount:   textutil.CountGraphemes(m.Content),
		EmojiCount:  textutil.CountEmoji(m.Content),
	}
	if m.Author != nil {
		evt.ActorID = m.Author.ID
	}
	for _, u := range m.Mentions {
		evt.MentionUsers = append(evt.MentionUsers, u.ID)
	}
	evt.MentionRoles = append(evt.MentionRoles, m.MentionRoles...)
	for _, att := range m.Attachments {
		evt.Attachments = append(evt.Attachments, event.Attachment{
			ID:          att.ID,
			Filename:    att.Filename,
			ContentType: att.ContentType,
			Size:        att.Size,
		})
	}
	return evt
}

func NormalizeMemberJoin(g *discordgo.GuildMemberAdd) *event.Event {
	evt := &event.Event{
		Kind:      event.KindMemberJoin,
		GuildID:   g.GuildID,
		Timestamp: g.JoinedAt,
	}
	if g.User != nil {
		evt.ActorID = g.User.ID
	}
	return evt
}

// NormalizeRoleChanges diffs the member's role set before and after an update and emits one event per added or removed role. Returns nil when the gateway did not include pre-update state.
func NormalizeRoleChanges(g *discordgo.GuildMemberUpdate, at time.Time) []*event.Event {
	if g.BeforeUpdate == nil {
		return nil
	}
	added, removed := diffRoles(g.BeforeUpdate.Roles, g.Roles)

	actorID := ""
	if g.User != nil {
		actorID = g.User.ID
	}
	var out []*event.Event
	for _, r := range added {
		out = append(out, &event.Event{
			Kind:      event.KindRoleAdd,
			GuildID:   g.GuildID,
			ActorID:   actorID,
			Timestamp: at,
			RoleID:    r,
		})
	}
	for _, r := range removed {
		out = append(out, &event.Event{
			Kind:      event.KindRoleRemove,
			GuildID:   g.GuildID,
			ActorID:   actorID,
			Timestamp: at,
			RoleID:    r,
		})
	}
	return out
}

func diffRoles(before, after []string) (added, removed []string) {
	prev := make(map[string]bool, len(before))
	for _, r := range before {
		prev[r] = true
	}
	next := make(map[string]bool, len(after))
	for _, r := range after {
		next[r] = true
		if !prev[r] {
			added = append(added, r)
		}
	}
	for _, r := range before {
		if !next[r] {
			removed = append(removed, r)
		}
	}
	return added, removed
}
