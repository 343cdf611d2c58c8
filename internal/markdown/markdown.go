// Package markdown converts directive-resolved Markdown to HTML with the
// generator's fixed extension set: tables, strikethrough, emoji, fenced code
// blocks, and syntax highlighting.
package markdown

import (
	"bytes"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Converter renders Markdown to HTML. It is configured once per build with
// the site's highlight style and reused for every record.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter builds a converter. When highlightStyle is non-empty the
// style's colors are embedded inline in the HTML so no highlight stylesheet
// is needed; when empty, code blocks get CSS classes only.
func NewConverter(highlightStyle string) *Converter {
	highlightOpts := []highlighting.Option{
		highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
	}
	if highlightStyle != "" {
		highlightOpts = []highlighting.Option{
			highlighting.WithStyle(highlightStyle),
			highlighting.WithFormatOptions(chromahtml.WithClasses(false)),
		}
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			emoji.Emoji,
			highlighting.NewHighlighting(highlightOpts...),
		),
		// Content authors control everything fed to the renderer, so raw
		// HTML passes through unescaped.
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Converter{md: md}
}

// Convert renders a Markdown source string to HTML.
func (c *Converter) Convert(source string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
