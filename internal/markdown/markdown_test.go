package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertBasic(t *testing.T) {
	html, err := NewConverter("").Convert("# Title\n\nSome *emphasis*.")
	require.NoError(t, err)
	require.Contains(t, html, "<h1>Title</h1>")
	require.Contains(t, html, "<em>emphasis</em>")
}

func TestConvertTables(t *testing.T) {
	html, err := NewConverter("").Convert("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	require.Contains(t, html, "<table>")
}

func TestConvertStrikethrough(t *testing.T) {
	html, err := NewConverter("").Convert("~~gone~~")
	require.NoError(t, err)
	require.Contains(t, html, "<del>gone</del>")
}

func TestConvertEmoji(t *testing.T) {
	html, err := NewConverter("").Convert("Hello :wave:")
	require.NoError(t, err)
	require.NotContains(t, html, ":wave:")
}

func TestConvertFencedCodeWithStyle(t *testing.T) {
	source := "```go\npackage main\n```\n"

	styled, err := NewConverter("monokai").Convert(source)
	require.NoError(t, err)
	require.Contains(t, styled, "style=")

	unstyled, err := NewConverter("").Convert(source)
	require.NoError(t, err)
	require.Contains(t, unstyled, "<code")
	require.NotContains(t, unstyled, "background-color")
}

func TestConvertRawHTMLPassesThrough(t *testing.T) {
	html, err := NewConverter("").Convert("<div class=\"x\">kept</div>")
	require.NoError(t, err)
	require.Contains(t, html, "<div class=\"x\">kept</div>")
}
