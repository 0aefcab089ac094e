package event

import (
	"time"
)

// Kind of platform occurrence, after normalization by the dispatcher.
type Kind string

const (
	KindMessageCreate Kind = "message_create"
	KindMemberJoin    Kind = "member_join"
	KindRoleAdd       Kind = "role_add"
	KindRoleRemove    Kind = "role_remove"
)

// Descriptor for a single message attachment. Only metadata, never the bytes.
type Attachment struct {
	ID          string
	Filename    string
	ContentType string
	Size        int
}

// A single normalized platform occurrence, the unit of trigger evaluation.
//
// Events are containers for data about the occurrence itself (similar to an HTTP request type). All derived fields (extracted links, invite codes, grapheme counts) are computed once, by the dispatcher, before evaluation begins; no trigger matcher does parsing or I/O of its own.
//
// Immutable once constructed.
type Event struct {
	Kind      Kind
	GuildID   string
	ActorID   string
	ChannelID string
	// ID of the message this event derives from, when Kind is message_create.
	MessageID string
	Timestamp time.Time

	// Message payload fields. Zero-valued for non-message events.
	Text         string
	Attachments  []Attachment
	MentionUsers []string
	MentionRoles []string
	// URLs found in Text, in order of appearance.
	Links []string
	// Invite codes found in Text, in order of appearance.
	InviteCodes []string
	// Number of newline-separated lines in Text.
	LineCount int
	// Number of grapheme clusters in Text (user-perceived characters).
	CharCount int
	// Number of emoji in Text, counting both unicode emoji and custom platform emoji.
	EmojiCount int

	// Role change payload. Set only for role_add and role_remove events.
	RoleID string
}
