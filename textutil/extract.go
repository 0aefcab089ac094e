package textutil

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
	"github.com/spaolacci/murmur3"
)

// based on: https://stackoverflow.com/a/48769624, with no trailing period allowed
var urlRegex = regexp.MustCompile(`(?:(?:https?|ftp):\/\/)?[\w/\-?=%.]+\.[\w/\-&?=%.]*[\w/\-&?=%]+`)

var inviteRegex = regexp.MustCompile(`(?i)(?:discord\.gg|discord(?:app)?\.com/invite)/([\w-]+)`)

var customEmojiRegex = regexp.MustCompile(`<a?:\w+:\d+>`)

// ExtractURLs returns all URL-shaped substrings of raw, in order of appearance.
func ExtractURLs(raw string) []string {
	return urlRegex.FindAllString(raw, -1)
}

// ExtractInviteCodes returns the invite codes from any invite links in raw, in order of appearance.
func ExtractInviteCodes(raw string) []string {
	var out []string
	for _, m := range inviteRegex.FindAllStringSubmatch(raw, -1) {
		out = append(out, m[1])
	}
	return out
}

// URLDomain returns the lower-cased host part of a URL-shaped string, without any scheme, port, or path.
func URLDomain(raw string) string {
	s := strings.ToLower(raw)
	if idx := strings.Index(s, "://"); idx >= 0 {
		s = s[idx+3:]
	}
	if idx := strings.IndexAny(s, "/?#"); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}
	return s
}

// CountGraphemes returns the number of user-perceived characters (grapheme clusters) in text.
func CountGraphemes(text string) int {
	return uniseg.GraphemeClusterCount(text)
}

// CountLines returns the number of newline-separated lines in text. Empty text has zero lines.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}

// CountEmoji returns the number of emoji in text, counting both unicode emoji grapheme clusters and custom platform emoji of the form <:name:id>.
func CountEmoji(text string) int {
	n := len(customEmojiRegex.FindAllString(text, -1))
	stripped := customEmojiRegex.ReplaceAllString(text, "")
	gr := uniseg.NewGraphemes(stripped)
	for gr.Next() {
		runes := gr.Runes()
		if len(runes) > 0 && isEmojiRune(runes[0]) {
			n++
		}
	}
	return n
}

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // pictographs, emoticons, transport, supplemental
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators (flags)
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
		return true
	case r == 0x2B50 || r == 0x2B55:
		return true
	}
	return false
}

func DedupeStrings(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range in {
		if !seen[v] {
			out = append(out, v)
			seen[v] = true
		}
	}
	return out
}

// returns a fast, compact hash of a string
//
// current implementation uses murmur3, default seed, and hex encoding
func HashOfString(s string) string {
	val := murmur3.Sum64([]byte(s))
	return fmt.Sprintf("%016x", val)
}
