package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases and strips punctuation", in: "Hello, WORLD!", want: "hello world"},
		{name: "removes urls", in: "read https://example.com/a?b=1 now", want: "read now"},
		{name: "removes www urls", in: "see www.example.com for more", want: "see for more"},
		{name: "removes emoji", in: "ship it 🚀🚀", want: "ship it"},
		{name: "collapses whitespace", in: "  a \t\n  b  ", want: "a b"},
		{name: "folds fullwidth forms", in: "ＡＩ agents", want: "ai agents"},
		{name: "keeps digits", in: "GPT-5 launched in 2025", want: "gpt 5 launched in 2025"},
		{name: "empty", in: "", want: ""},
		{name: "punctuation only", in: "!!! ... ???", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeContent(tt.in))
		})
	}
}

func TestHashContent(t *testing.T) {
	t.Run("stable under cosmetic differences", func(t *testing.T) {
		a := HashContent("AI agents are here! https://t.co/xyz")
		b := HashContent("ai agents   are HERE")
		assert.Equal(t, a, b)
	})

	t.Run("different content differs", func(t *testing.T) {
		assert.NotEqual(t, HashContent("alpha beta"), HashContent("alpha gamma"))
	})

	t.Run("shape", func(t *testing.T) {
		h := HashContent("anything at all")
		assert.Len(t, h, ContentHashLength)
		assert.True(t, IsContentHash(h))
	})
}

func TestIsContentHash(t *testing.T) {
	assert.True(t, IsContentHash("0123456789abcdef"))
	assert.False(t, IsContentHash("0123456789ABCDEF"))
	assert.False(t, IsContentHash("0123456789abcde"))
	assert.False(t, IsContentHash("0123456789abcdefg"))
	assert.False(t, IsContentHash(""))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"the", "quick", "fox"}, Tokens("The quick, fox!"))
	assert.Empty(t, Tokens("  "))
}
