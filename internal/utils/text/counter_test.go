package text_test

import (
	"testing"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/utils/text"
)

func TestCountRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "ASCII text", input: "hello\u200Bworld", expected: 11},
		{name: "Japanese mixed", input: "こんにちは世界", expected: 7},
		{name: "English and Japanese", input: "hello世界", expected: 7},
		{name: "ASCII with emoji", input: "Hello👋", expected: 6},
		{name: "Flag", input: "🇯🇵", expected: 2},
		{name: "Empty string", input: "", expected: 0},
		{name: "Mixed whitespace", input: " \t\n ", expected: 4},
		{name: "Zero-width space", input: "hello\u200Bworld", expected: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := text.CountRunes(tt.input); got != tt.expected {
				t.Errorf("CountRunes(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		limit  int
		suffix string
		want   string
	}{
		{name: "short enough", input: "hello", limit: 5, suffix: "...", want: "hello"},
		{name: "cut ASCII", input: "hello world", limit: 5, suffix: "...", want: "hello..."},
		{name: "cut multibyte", input: "人工知能技術", limit: 2, suffix: "…", want: "人工…"},
		{name: "emoji boundary", input: "ab🚀cd", limit: 3, suffix: "", want: "ab🚀"},
		{name: "zero limit", input: "anything", limit: 0, suffix: "...", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := text.Truncate(tt.input, tt.limit, tt.suffix); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.want)
			}
		})
	}
}
