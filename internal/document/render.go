package document

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"redditrewriter/internal/markdown"

	"github.com/fumiama/go-docx"
	"github.com/yuin/goldmark"
)

// Run sizes are in half-points.
const (
	headingSize  = "28"
	bodySize     = "16"
	headingStyle = "Heading1"
)

type renderFunc func(w io.Writer, title, body string) error

func renderDOCX(w io.Writer, title, body string) error {
	doc := docx.New().WithDefaultTheme()

	doc.AddParagraph().Style(headingStyle).AddText(title).Size(headingSize).Bold()
	doc.AddParagraph().AddText(body).Size(bodySize)
	doc.AddParagraph()

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}

	return nil
}

func renderMarkdown(w io.Writer, title, body string) error {
	_, err := io.WriteString(w, markdownSource(title, body))
	if err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	return nil
}

func markdownSource(title, body string) string {
	var b strings.Builder

	b.WriteString("# ")
	b.WriteString(markdown.Escape(markdown.SingleLine(title)))
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n")

	return b.String()
}

const htmlHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
h1 { font-size: 14pt; }
p, li { font-size: 8pt; }
</style>
</head>
<body>
`

const htmlTail = `<p></p>
</body>
</html>
`

func renderHTML(w io.Writer, title, body string) error {
	var buf bytes.Buffer

	if err := goldmark.Convert([]byte(markdownSource(title, body)), &buf); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}

	if _, err := fmt.Fprintf(w, htmlHead, html.EscapeString(markdown.SingleLine(title))); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	if _, err := io.WriteString(w, htmlTail); err != nil {
		return fmt.Errorf("write html: %w", err)
	}

	return nil
}
