package trigger

import (
	"fmt"
	"path"
	"strings"

	"github.com/guildmod/guildmod/event"
	"github.com/guildmod/guildmod/textutil"
)

var (
	_ InstantFunc = matchWords
	_ InstantFunc = matchRegex
	_ InstantFunc = matchInvites
	_ InstantFunc = matchLinks
	_ InstantFunc = matchAttachmentType
	_ InstantFunc = matchMemberJoin
	_ InstantFunc = matchRoleAdded
	_ InstantFunc = matchRoleRemoved
)

func matchWords(evt *event.Event, cfg Config) (*MatchDetails, error) {
	c, ok := cfg.(WordsConfig)
	if !ok {
		return nil, fmt.Errorf("mismatch between trigger kind (%s) and config type", cfg.TriggerKind())
	}

	var matched []string
	if c.Loose {
		text := evt.Text
		if !c.CaseSensitive {
			text = strings.ToLower(text)
		}
		for _, w := range c.Words {
			if !c.CaseSensitive {
				w = strings.ToLower(w)
			}
			if strings.Contains(text, w) {
				matched = append(matched, w)
			}
		}
	} else {
		var tokens []string
		if c.CaseSensitive {
			tokens = textutil.TokenizeTextCaseSensitive(evt.Text)
		} else {
			tokens = textutil.TokenizeText(evt.Text)
		}
		for _, w := range c.Words {
			if !c.CaseSensitive {
				w = strings.ToLower(w)
			}
			for _, tok := range tokens {
				if tok == w {
					matched = append(matched, w)
					break
				}
			}
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}
	return &MatchDetails{Matched: textutil.DedupeStrings(matched)}, nil
}

func matchRegex(evt *event.Event, cfg Config) (*MatchDetails, error) {
	c, ok := cfg.(RegexConfig)
	if !ok {
		return nil, fmt.Errorf("mismatch between trigger kind (%s) and config type", cfg.TriggerKind())
	}

	var matched []string
	for _, re := range c.Patterns {
		m, hit, err := findBounded(re, evt.Text, c.MatchBudget)
		if err != nil {
			// timeout on one pattern poisons the whole config for this event; report it so the engine can count it
			return nil, err
		}
		if hit {
			matched = append(matched, m)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}
	return &MatchDetails{Matched: textutil.DedupeStrings(matched)}, nil
}

func matchInvites(evt *event.Event, cfg Config) (*MatchDetails, error) {
	c, ok := cfg.(InvitesConfig)
	if !ok {
		return nil, fmt.Errorf("mismatch between trigger kind (%s) and config type", cfg.TriggerKind())
	}

	var matched []string
	for _, code := range evt.InviteCodes {
		allowed := false
		for _, a := range c.AllowCodes {
			if strings.EqualFold(code, a) {
				allowed = true
				break
			}
		}
		if !allowed {
			matched = append(matched, code)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}
	return &MatchDetails{Matched: textutil.DedupeStrings(matched)}, nil
}

func matchLinks(evt *event.Event, cfg Config) (*MatchDetails, error) {
	c, ok := cfg.(LinksConfig)
	if !ok {
		return nil, fmt.Errorf("mismatch between trigger kind (%s) and config type", cfg.TriggerKind())
	}

	var matched []string
	for _, link := range evt.Links {
		domain := textutil.URLDomain(link)
		listed := false
		for _, d := range c.Domains {
			if domain == strings.ToLower(d) || strings.HasSuffix(domain, "."+strings.ToLower(d)) {
				listed = true
				break
			}
		}
		if c.Whitelist != listed {
			matched = append(matched, link)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}
	return &MatchDetails{Matched: textutil.DedupeStrings(matched)}, nil
}

func matchAttachmentType(evt *event.Event, cfg Config) (*MatchDetails, error) {
	c, ok := cfg.(AttachmentTypeConfig)
	if !ok {
		return nil, fmt.Errorf("mismatch between trigger kind (%s) and config type", cfg.TriggerKind())
	}

	var matched []string
	for _, att := range evt.Attachments {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(att.Filename), "."))
		listed := false
		for _, e := range c.Extensions {
			if ext == strings.ToLower(strings.TrimPrefix(e, ".")) {
				listed = true
				break
			}
		}
		if c.Whitelist != listed {
			matched = append(matched, att.Filename)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}
	return &MatchDetails{Matched: matched}, nil
}

func matchMemberJoin(evt *event.Event, cfg Config) (*MatchDetails, error) {
	if _, ok := cfg.(MemberJoinConfig); !ok {
		return nil, fmt.Errorf("mismatch between trigger kind (%s) and config type", cfg.TriggerKind())
	}
	return &MatchDetails{Matched: []string{evt.ActorID}}, nil
}

func matchRoleChange(evt *event.Event, cfg Config) (*MatchDetails, error) {
	c, ok := cfg.(RoleChangeConfig)
	if !ok {
		return nil, fmt.Errorf("mismatch between trigger kind (%s) and config type", cfg.TriggerKind())
	}
	if len(c.Roles) == 0 {
		return &MatchDetails{Matched: []string{evt.RoleID}}, nil
	}
	for _, r := range c.Roles {
		if r == evt.RoleID {
			return &MatchDetails{Matched: []string{evt.RoleID}}, nil
		}
	}
	return nil, nil
}

func matchRoleAdded(evt *event.Event, cfg Config) (*MatchDetails, error) {
	return matchRoleChange(evt, cfg)
}

func matchRoleRemoved(evt *event.Event, cfg Config) (*MatchDetails, error) {
	return matchRoleChange(evt, cfg)
}
