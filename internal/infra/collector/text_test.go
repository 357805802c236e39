package collector

import "testing"

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "  already   plain\ttext ", want: "already plain text"},
		{name: "paragraphs", in: "<p>one</p><p>two</p>", want: "one two"},
		{name: "entities", in: "fish &amp; chips", want: "fish & chips"},
		{name: "script dropped", in: "<div>keep<script>var x = 1;</script></div>", want: "keep"},
		{name: "list items", in: "<ol><li><a href=\"#\">first</a></li><li>second</li></ol>", want: "first second"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlToText(tt.in); got != tt.want {
				t.Errorf("htmlToText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestJoinTitleBody(t *testing.T) {
	tests := []struct {
		title, body, want string
	}{
		{"Title", "", "Title"},
		{"", "Body", "Body"},
		{"Title", "Title and more", "Title and more"},
		{"Title", "Body", "Title\n\nBody"},
	}
	for _, tt := range tests {
		if got := joinTitleBody(tt.title, tt.body); got != tt.want {
			t.Errorf("joinTitleBody(%q, %q) = %q, want %q", tt.title, tt.body, got, tt.want)
		}
	}
}
