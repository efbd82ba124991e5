package parser

import (
	"bytes"
	"strings"
	"unicode"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// md is the shared Markdown renderer: GFM tables/strikethrough plus
// chroma syntax highlighting for fenced code blocks. Safe for
// concurrent use.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true),
			),
		),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

// stripper removes every HTML tag; used to derive plain-text summaries.
var stripper = bluemonday.StrictPolicy()

// Render converts Markdown body text to HTML.
func Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PlainText strips all markup from rendered HTML, collapsing
// whitespace. The search index stores this form.
func PlainText(html string) string {
	return strings.Join(strings.Fields(stripper.Sanitize(html)), " ")
}

// Summarize returns a plain-text excerpt of rendered HTML, cut at a
// word boundary near maxRunes. Used as the description fallback when
// the frontmatter omits one.
func Summarize(html string, maxRunes int) string {
	text := PlainText(html)
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	cut := maxRunes
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = maxRunes
	}
	return strings.TrimSpace(string(runes[:cut])) + "…"
}
