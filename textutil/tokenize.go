package textutil

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonTokenChars = regexp.MustCompile(`[^\pL\pN\s]+`)

var nonSlugChars = regexp.MustCompile(`[^\pL\pN]+`)

// Splits free-form text in to tokens, including lower-case, unicode normalization, and some unicode folding.
//
// The intent is to enable fast whole-word matching against a list of known tokens, tolerant of punctuation and combining marks.
func TokenizeText(text string) []string {
	return tokenize(text, true)
}

// Same as TokenizeText, but preserves letter case for case-sensitive matching.
func TokenizeTextCaseSensitive(text string) []string {
	return tokenize(text, false)
}

func tokenize(text string, fold bool) []string {
	// this transform chain needs to be re-defined in every function call to prevent a race condition
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	bare := nonTokenChars.ReplaceAllString(text, " ")
	if fold {
		bare = strings.ToLower(bare)
	}
	out, _, err := transform.String(normFunc, bare)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		out = bare
	}
	return strings.Fields(out)
}

// Takes an arbitrary string and returns a version with all non-letter, non-digit characters removed, and all lower-case
func Slugify(orig string) string {
	return strings.ToLower(nonSlugChars.ReplaceAllString(orig, ""))
}
