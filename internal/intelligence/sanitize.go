package intelligence

import (
	"regexp"
	"strings"
)

const descriptionSeparator = " · "

var (
	markerRe     = regexp.MustCompile(`(?i)\[(?:tags|when|time)\s*:[^\]]*(?:\]|$)`)
	hashtagRe    = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	emptyParenRe = regexp.MustCompile(`\(\s*\)`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanDescription strips internal [Tags:..], [When:..], [Time:..] markers
// and #tag tokens, then collapses whitespace and dangling separators.
func CleanDescription(s string) string {
	s = markerRe.ReplaceAllString(s, " ")
	s = hashtagRe.ReplaceAllString(s, "")
	s = emptyParenRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	for {
		trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "·"), "·"))
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

// ComposeDescription prefixes the estimated time onto the cleaned
// description. Returns nil when nothing is left.
func ComposeDescription(estimatedTime, description string) *string {
	est := CleanDescription(estimatedTime)
	desc := CleanDescription(description)

	var out string
	switch {
	case est != "" && desc != "":
		out = est + descriptionSeparator + desc
	case est != "":
		out = est
	default:
		out = desc
	}
	if out == "" {
		return nil
	}
	return &out
}
