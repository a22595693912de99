// Package keys derives the Redis keys of the search cache.
package keys

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const prefix = "tonari"

// SearchKey names one cached radius search. query identifies the search
// inside its cell (exact position and options); the readable part is
// truncated, the hash suffix keeps keys distinct.
func SearchKey(res int, cell, query string) string {
	query = strings.TrimSpace(query)
	safe := sanitizeForKey(query)

	const maxQueryTextLen = 160
	if len(safe) > maxQueryTextLen {
		safe = safe[:maxQueryTextLen]
	}

	sum := xxhash.Sum64String(query)

	return fmt.Sprintf("%s:search:%d:%s:q=%s:f=%016x", prefix, res, sanitizeForKey(cell), safe, sum)
}

// CellIndexKey names the set of search keys whose radius touches cell.
func CellIndexKey(res int, cell string) string {
	return fmt.Sprintf("%s:cellidx:%d:%s", prefix, res, sanitizeForKey(cell))
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
		case isAlphaNum(r) || r == '_' || r == '-' || r == '=':
			out = r
		default:
			// any other rune (including non-ASCII and ':') becomes '-'
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
		(r < unicode.MaxASCII && unicode.IsDigit(r))
}
