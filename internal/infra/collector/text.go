package collector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlToText flattens an HTML fragment to single-spaced plain text.
func htmlToText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapseSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseSpace(s)
	}
	doc.Find("script, style").Remove()
	// block and inline boundaries would otherwise glue adjacent words
	doc.Find("p, li, br, div, td, h1, h2, h3, h4, h5, h6, a, font").AppendHtml(" ")
	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// joinTitleBody builds item content from a title and a body, without
// repeating the title when the body already starts with it.
func joinTitleBody(title, body string) string {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	switch {
	case body == "":
		return title
	case title == "" || strings.HasPrefix(body, title):
		return body
	default:
		return title + "\n\n" + body
	}
}

func capLimit(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}
