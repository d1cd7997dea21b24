package dedup

import (
	"strings"
	"unicode"
)

// Normalize lowercases s, replaces every rune that is not a letter, number or
// underscore with a space and collapses whitespace runs. Normalize is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)

	return strings.Join(strings.Fields(mapped), " ")
}

// tokens returns the set of whitespace separated words of an already normalized string
func tokens(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
