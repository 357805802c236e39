package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ContentHashLength is the number of hex characters kept from the SHA-256 digest.
const ContentHashLength = 16

var (
	urlRe     = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	hashHexRe = regexp.MustCompile(`^[0-9a-f]{16}$`)
	lowerCase = cases.Lower(language.Und)
)

// NormalizeContent reduces text to the form used for hashing and similarity:
// NFKC-folded, lowercased, URLs removed, punctuation and emoji removed,
// whitespace collapsed to single spaces.
//
// Example:
//
//	NormalizeContent("Hello, WORLD! 🚀 https://x.io/a?utm=1") // "hello world"
func NormalizeContent(s string) string {
	s = norm.NFKC.String(s)
	s = lowerCase.String(s)
	s = urlRe.ReplaceAllString(s, " ")

	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			// 区切りとして扱う
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
		// other categories (marks, control, emoji modifiers) are dropped
	}
	return strings.TrimSpace(b.String())
}

// HashContent returns the 16-hex-char digest of the normalized content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(NormalizeContent(content)))
	return hex.EncodeToString(sum[:])[:ContentHashLength]
}

// IsContentHash reports whether s has the content hash shape.
func IsContentHash(s string) bool {
	return hashHexRe.MatchString(s)
}

// Tokens splits normalized content into its word tokens.
func Tokens(content string) []string {
	return strings.Fields(NormalizeContent(content))
}
