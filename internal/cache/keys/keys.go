// Package keys builds canonical cache keys for search and map responses.
package keys

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// Key renders "<kind>:g<gen>:<filter text>:f=<hash>:x=<hash>". The readable
// filter text is truncated and sanitized for operator-facing tooling; the
// xxhash of the untruncated canonical key is what makes the key unique. extra
// distinguishes variants under one filter state (cursor, page size, viewport).
func Key(kind string, gen uint64, filterKey, extra string) string {
	filterSafe := sanitizeForKey(filterKey)
	const maxFilterTextLen = 120
	if len(filterSafe) > maxFilterTextLen {
		filterSafe = filterSafe[:maxFilterTextLen]
	}
	return fmt.Sprintf("%s:g%d:%s:f=%016x:x=%016x",
		kind, gen, filterSafe, xxhash.Sum64String(filterKey), xxhash.Sum64String(extra))
}

func sanitizeForKey(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		out := rune(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == ':' || r == '_' || r == '-' || r == '=' || r == '|' || r == ',':
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		unicode.IsDigit(r)
}
