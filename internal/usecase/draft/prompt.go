package draft

import (
	"fmt"
	"strings"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/domain/entity"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/fallback"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/utils/text"
)

// BuildPrompt renders the model prompt for query from items. Items are
// numbered from 1 in the given order so the model can cite them.
func BuildPrompt(query string, items []entity.RawItem, snippetChars int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a LinkedIn post about %q.\n\n", query)
	b.WriteString("Rules:\n")
	b.WriteString("- Use only the source material below and cite it as [n].\n")
	b.WriteString("- Open with a one-line hook and keep the post under 1300 characters.\n")
	b.WriteString("- End with a question that invites discussion.\n")
	b.WriteString("- Reply with the post text only.\n\n")
	b.WriteString("Source material:\n")

	for i, it := range items {
		fmt.Fprintf(&b, "\n[%d] (%s)", i+1, it.Source)
		if it.Title != "" {
			fmt.Fprintf(&b, " %s", it.Title)
		}
		fmt.Fprintf(&b, "\nURL: %s\n", it.SourceURL)
		b.WriteString(text.Truncate(it.Content, snippetChars, "..."))
		b.WriteString("\n")
	}
	return b.String()
}

// Extractive assembles a draft directly from the top items without a model.
// It fails only when there is nothing to extract from.
func Extractive(query string, items []entity.RawItem, n int) (string, error) {
	if len(items) == 0 {
		return "", &fallback.GenerationError{Tier: ExtractiveTierName, Reason: "no items to extract from"}
	}
	items = topItems(items, n)

	var b strings.Builder
	fmt.Fprintf(&b, "What's new in %s:\n\n", query)
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s [%d]\n", i+1, headline(it), i+1)
	}
	b.WriteString("\nWhich of these will matter most a year from now?\n\nSources:\n")
	for i, it := range items {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, it.SourceURL)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// headline is the item title, or the first sentence of its content.
func headline(it entity.RawItem) string {
	if it.Title != "" {
		return text.Truncate(it.Title, 160, "...")
	}
	content := strings.Join(strings.Fields(it.Content), " ")
	return text.Truncate(firstSentence(content), 160, "...")
}

// firstSentence cuts s after the first '.', '!' or '?' that is followed by a space.
func firstSentence(s string) string {
	for i := 0; i+1 < len(s); i++ {
		switch s[i] {
		case '.', '!', '?':
			if s[i+1] == ' ' {
				return s[:i+1]
			}
		}
	}
	return s
}
