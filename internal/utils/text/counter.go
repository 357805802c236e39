// Package text holds rune-aware helpers shared by the prompt builders and model tiers.
package text

import "unicode/utf8"

// CountRunes counts Unicode code points, not bytes.
//
//	CountRunes("hello世界") // 7
//	CountRunes("🇯🇵")       // 2 (two regional indicators)
func CountRunes(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate cuts s to at most limit runes and appends suffix when it cut
// anything. It never splits a multi-byte character.
func Truncate(s string, limit int, suffix string) string {
	if limit <= 0 {
		return ""
	}
	if CountRunes(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + suffix
		}
		n++
	}
	return s
}
