package markdown_test

import (
	"testing"
	"unicode/utf8"

	"redditrewriter/internal/markdown"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Nothing to escape here", want: "Nothing to escape here"},
		{name: "heading marker", input: "#1 reason", want: `\#1 reason`},
		{name: "emphasis", input: "*very* _good_", want: `\*very\* \_good\_`},
		{name: "link", input: "[a](b)", want: `\[a\]\(b\)`},
		{name: "backslash", input: `a\b`, want: `a\\b`},
		{name: "html", input: "<b>&", want: `\<b\>\&`},
		{name: "unicode untouched", input: "Größe – ok", want: "Größe – ok"},
		{name: "unicode with punctuation", input: "Café! Größe (日本)", want: `Café\! Größe \(日本\)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := markdown.Escape(tt.input)
			if got != tt.want {
				t.Fatalf("Escape(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("Escape(%q) produced invalid UTF-8", tt.input)
			}
		})
	}
}

func TestSingleLine(t *testing.T) {
	got := markdown.SingleLine("  one\ntwo \r\n\tthree  ")
	if got != "one two three" {
		t.Fatalf("SingleLine() = %q", got)
	}
}
