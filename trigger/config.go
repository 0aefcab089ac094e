package trigger

import (
	"fmt"
	"regexp"
	"time"
)

// Per-kind config types. Raw configs arrive as JSON-decoded maps from the tenant configuration store and are validated into these before evaluation; a config that fails validation is rejected whole, never partially applied.

type WordsConfig struct {
	BaseConfig
	Words         []string
	CaseSensitive bool
	// Loose matches words as substrings instead of respecting whole-word boundaries.
	Loose bool
}

type RegexConfig struct {
	BaseConfig
	Patterns []*regexp.Regexp
	// Wall-clock budget per pattern evaluation. Timeout is treated as no-match.
	MatchBudget time.Duration
}

type InvitesConfig struct {
	BaseConfig
	// Invite codes which never match (eg, the guild's own invites).
	AllowCodes []string
}

type LinksConfig struct {
	BaseConfig
	Domains []string
	// When true, Domains is an allowlist: links to any other domain match. When false, Domains is a blocklist; an empty blocklist matches every link.
	Whitelist bool
}

type AttachmentTypeConfig struct {
	BaseConfig
	Extensions []string
	// When true, Extensions is an allowlist: any other extension matches.
	Whitelist bool
}

type MemberJoinConfig struct {
	BaseConfig
}

type RoleChangeConfig struct {
	BaseConfig
	// Role IDs to watch. Empty means any role change matches.
	Roles []string
}

// Shared config for all windowed (spam-counting) kinds.
type SpamConfig struct {
	BaseConfig
	Threshold int
	Window    time.Duration
	// Per-message weight deduction for character_spam: only characters in excess of the baseline accumulate.
	Baseline int
	// Clear the actor's window when the trigger fires, so one burst fires exactly once.
	ResetOnFire bool
}

// rawConfig accumulates the first schema violation while pulling typed fields out of a JSON-decoded map.
type rawConfig struct {
	kind Kind
	m    map[string]any
	seen map[string]bool
	err  error
}

func newRawConfig(kind Kind, m map[string]any) *rawConfig {
	return &rawConfig{kind: kind, m: m, seen: make(map[string]bool)}
}

func (rc *rawConfig) fail(format string, args ...any) {
	if rc.err == nil {
		rc.err = &InvalidConfigError{Kind: rc.kind, Reason: fmt.Sprintf(format, args...)}
	}
}

func (rc *rawConfig) finish() error {
	if rc.err != nil {
		return rc.err
	}
	for k := range rc.m {
		if !rc.seen[k] {
			return &InvalidConfigError{Kind: rc.kind, Reason: fmt.Sprintf("unknown field %q", k)}
		}
	}
	return nil
}

func (rc *rawConfig) boolean(field string, def bool) bool {
	rc.seen[field] = true
	v, ok := rc.m[field]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		rc.fail("field %q must be a boolean", field)
		return def
	}
	return b
}

func (rc *rawConfig) integer(field string, def int) int {
	rc.seen[field] = true
	v, ok := rc.m[field]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			rc.fail("field %q must be an integer", field)
			return def
		}
		return int(n)
	case int:
		return n
	default:
		rc.fail("field %q must be an integer", field)
		return def
	}
}

func (rc *rawConfig) stringSlice(field string) []string {
	rc.seen[field] = true
	v, ok := rc.m[field]
	if !ok {
		return nil
	}
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			s, ok := item.(string)
			if !ok {
				rc.fail("field %q must be a list of strings", field)
				return nil
			}
			out = append(out, s)
		}
		return out
	default:
		rc.fail("field %q must be a list of strings", field)
		return nil
	}
}

// duration accepts either a number of milliseconds or a Go duration string ("5s").
func (rc *rawConfig) duration(field string, def time.Duration) time.Duration {
	rc.seen[field] = true
	v, ok := rc.m[field]
	if !ok {
		return def
	}
	switch d := v.(type) {
	case float64:
		if d < 0 {
			rc.fail("field %q must not be negative", field)
			return def
		}
		return time.Duration(d) * time.Millisecond
	case int:
		if d < 0 {
			rc.fail("field %q must not be negative", field)
			return def
		}
		return time.Duration(d) * time.Millisecond
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil || parsed < 0 {
			rc.fail("field %q is not a valid duration: %v", field, d)
			return def
		}
		return parsed
	default:
		rc.fail("field %q must be a duration (milliseconds or string)", field)
		return def
	}
}

func (rc *rawConfig) base() BaseConfig {
	return BaseConfig{
		Kind:        rc.kind,
		CooldownDur: rc.duration("cooldown", 0),
	}
}

func (rc *rawConfig) spamBase() SpamConfig {
	cfg := SpamConfig{
		BaseConfig:  rc.base(),
		Threshold:   rc.integer("threshold", 0),
		Window:      rc.duration("window_size", 0),
		Baseline:    rc.integer("baseline", 0),
		ResetOnFire: rc.boolean("reset_on_fire", true),
	}
	if rc.err == nil {
		if cfg.Threshold < 1 {
			rc.fail("threshold must be at least 1")
		} else if cfg.Window <= 0 {
			rc.fail("window_size is required and must be positive")
		} else if cfg.Baseline < 0 {
			rc.fail("baseline must not be negative")
		}
	}
	return cfg
}

func validateWords(raw map[string]any) (Config, error) {
	rc := newRawConfig(KindMatchWords, raw)
	cfg := WordsConfig{
		BaseConfig:    rc.base(),
		Words:         rc.stringSlice("words"),
		CaseSensitive: rc.boolean("case_sensitive", false),
		Loose:         rc.boolean("loose", false),
	}
	if rc.err == nil && len(cfg.Words) == 0 {
		rc.fail("words must not be empty")
	}
	if err := rc.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateRegex(raw map[string]any) (Config, error) {
	rc := newRawConfig(KindMatchRegex, raw)
	patterns := rc.stringSlice("patterns")
	budget := rc.duration("match_budget", DefaultMatchBudget)
	cfg := RegexConfig{
		BaseConfig:  rc.base(),
		MatchBudget: budget,
	}
	if rc.err == nil && len(patterns) == 0 {
		rc.fail("patterns must not be empty")
	}
	for _, p := range patterns {
		if rc.err != nil {
			break
		}
		re, err := CompileSafe(p)
		if err != nil {
			rc.fail("pattern %q: %v", p, err)
			break
		}
		cfg.Patterns = append(cfg.Patterns, re)
	}
	if err := rc.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateInvites(raw map[string]any) (Config, error) {
	rc := newRawConfig(KindMatchInvites, raw)
	cfg := InvitesConfig{
		BaseConfig: rc.base(),
		AllowCodes: rc.stringSlice("allow_codes"),
	}
	if err := rc.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateLinks(raw map[string]any) (Config, error) {
	rc := newRawConfig(KindMatchLinks, raw)
	cfg := LinksConfig{
		BaseConfig: rc.base(),
		Domains:    rc.stringSlice("domains"),
		Whitelist:  rc.boolean("whitelist", false),
	}
	if rc.err == nil && cfg.Whitelist && len(cfg.Domains) == 0 {
		rc.fail("whitelist mode requires a non-empty domains list")
	}
	if err := rc.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateAttachmentType(raw map[string]any) (Config, error) {
	rc := newRawConfig(KindMatchAttachmentType, raw)
	cfg := AttachmentTypeConfig{
		BaseConfig: rc.base(),
		Extensions: rc.stringSlice("extensions"),
		Whitelist:  rc.boolean("whitelist", false),
	}
	if rc.err == nil && len(cfg.Extensions) == 0 {
		rc.fail("extensions must not be empty")
	}
	if err := rc.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateMemberJoin(raw map[string]any) (Config, error) {
	rc := newRawConfig(KindMemberJoin, raw)
	cfg := MemberJoinConfig{BaseConfig: rc.base()}
	if err := rc.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateRoleChange(kind Kind) func(raw map[string]any) (Config, error) {
	return func(raw map[string]any) (Config, error) {
		rc := newRawConfig(kind, raw)
		cfg := RoleChangeConfig{
			BaseConfig: rc.base(),
			Roles:      rc.stringSlice("roles"),
		}
		if err := rc.finish(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
}

func validateSpam(kind Kind) func(raw map[string]any) (Config, error) {
	return func(raw map[string]any) (Config, error) {
		rc := newRawConfig(kind, raw)
		cfg := rc.spamBase()
		if kind != KindCharacterSpam && cfg.Baseline != 0 {
			rc.fail("baseline is only valid for character_spam")
		}
		if err := rc.finish(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
}
