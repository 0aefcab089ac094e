package trigger

import (
	"github.com/guildmod/guildmod/event"
)

var messageOnly = []event.Kind{event.KindMessageCreate}

// The full built-in catalog. Kinds are fixed; tenants only choose which to enable and how to configure them.
func builtinSpecs() []*Spec {
	return []*Spec{
		{
			Kind:     KindMatchWords,
			Accepts:  messageOnly,
			Validate: validateWords,
			Match:    matchWords,
		},
		{
			Kind:     KindMatchRegex,
			Accepts:  messageOnly,
			Validate: validateRegex,
			Match:    matchRegex,
		},
		{
			Kind:     KindMatchInvites,
			Accepts:  messageOnly,
			Validate: validateInvites,
			Match:    matchInvites,
		},
		{
			Kind:     KindMatchLinks,
			Accepts:  messageOnly,
			Validate: validateLinks,
			Match:    matchLinks,
		},
		{
			Kind:     KindMatchAttachmentType,
			Accepts:  messageOnly,
			Validate: validateAttachmentType,
			Match:    matchAttachmentType,
		},
		{
			Kind:     KindMemberJoin,
			Accepts:  []event.Kind{event.KindMemberJoin},
			Validate: validateMemberJoin,
			Match:    matchMemberJoin,
		},
		{
			Kind:     KindRoleAdded,
			Accepts:  []event.Kind{event.KindRoleAdd},
			Validate: validateRoleChange(KindRoleAdded),
			Match:    matchRoleAdded,
		},
		{
			Kind:     KindRoleRemoved,
			Accepts:  []event.Kind{event.KindRoleRemove},
			Validate: validateRoleChange(KindRoleRemoved),
			Match:    matchRoleRemoved,
		},
		{
			Kind:          KindMessageSpam,
			Accepts:       messageOnly,
			Validate:      validateSpam(KindMessageSpam),
			MatchWindowed: matchSpam(KindMessageSpam),
		},
		{
			Kind:          KindMentionSpam,
			Accepts:       messageOnly,
			Validate:      validateSpam(KindMentionSpam),
			MatchWindowed: matchSpam(KindMentionSpam),
		},
		{
			Kind:          KindLinkSpam,
			Accepts:       messageOnly,
			Validate:      validateSpam(KindLinkSpam),
			MatchWindowed: matchSpam(KindLinkSpam),
		},
		{
			Kind:          KindAttachmentSpam,
			Accepts:       messageOnly,
			Validate:      validateSpam(KindAttachmentSpam),
			MatchWindowed: matchSpam(KindAttachmentSpam),
		},
		{
			Kind:          KindEmojiSpam,
			Accepts:       messageOnly,
			Validate:      validateSpam(KindEmojiSpam),
			MatchWindowed: matchSpam(KindEmojiSpam),
		},
		{
			Kind:          KindLineSpam,
			Accepts:       messageOnly,
			Validate:      validateSpam(KindLineSpam),
			MatchWindowed: matchSpam(KindLineSpam),
		},
		{
			Kind:          KindCharacterSpam,
			Accepts:       messageOnly,
			Validate:      validateSpam(KindCharacterSpam),
			MatchWindowed: matchSpam(KindCharacterSpam),
		},
		{
			Kind:          KindMemberJoinSpam,
			Accepts:       []event.Kind{event.KindMemberJoin},
			Validate:      validateSpam(KindMemberJoinSpam),
			MatchWindowed: matchSpam(KindMemberJoinSpam),
		},
	}
}
