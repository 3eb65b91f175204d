package rewriter

import (
	"strings"

	"redditrewriter/internal/domain"
)

const (
	rewriteInstruction = "I will give you a URL to a Reddit post. " +
		"Your job is to rewrite the post and make it more engaging in a article format. " +
		"All I want is the post, no extra comments. POST URL: "

	titleInstruction = "I will give you a Reddit post. " +
		"Your job is to give it an engaging and clickable title. " +
		"All I want is the title, no extra comments. Here is the post: "

	maxContextChars = 6000
)

func buildRewritePrompt(post domain.Post) string {
	var b strings.Builder

	b.WriteString(rewriteInstruction)
	b.WriteString(strings.TrimSpace(post.URL))

	title := strings.TrimSpace(post.Title)
	selfText := truncateRunes(strings.TrimSpace(post.SelfText), maxContextChars)
	linkURL := strings.TrimSpace(post.LinkURL)

	if title == "" && selfText == "" && linkURL == "" {
		return b.String()
	}

	b.WriteString("\n\nFor reference, the post as it appears on the feed:\n")
	if title != "" {
		b.WriteString("Title: ")
		b.WriteString(title)
		b.WriteString("\n")
	}
	if linkURL != "" {
		b.WriteString("Link: ")
		b.WriteString(linkURL)
		b.WriteString("\n")
	}
	if selfText != "" {
		b.WriteString("Text:\n")
		b.WriteString(selfText)
	}

	return strings.TrimRight(b.String(), "\n")
}

func buildTitlePrompt(content string) string {
	return titleInstruction + strings.TrimSpace(content)
}

// cleanTitle drops the wrapping quotes and "Title:" label models tend to add.
func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}

	if len(title) > len("title:") && strings.EqualFold(title[:len("title:")], "title:") {
		title = strings.TrimSpace(title[len("title:"):])
	}

	for _, pair := range [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}, {"**", "**"}} {
		if len(title) >= len(pair[0])+len(pair[1]) &&
			strings.HasPrefix(title, pair[0]) && strings.HasSuffix(title, pair[1]) {
			title = strings.TrimSpace(title[len(pair[0]) : len(title)-len(pair[1])])
		}
	}

	return title
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return strings.TrimSpace(string(runes[:limit])) + "…"
}
