package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitBasic(t *testing.T) {
	block, body, err := Split("---\ntemplate: main\n---\nHello, world!\n")
	require.NoError(t, err)
	require.Equal(t, "template: main", block)
	require.Equal(t, "Hello, world!", body)
}

func TestSplitEmptyBlock(t *testing.T) {
	block, body, err := Split("---\n---\nJust content.")
	require.NoError(t, err)
	require.Equal(t, "", block)
	require.Equal(t, "Just content.", body)
}

func TestSplitMissingDelimiters(t *testing.T) {
	_, _, err := Split("no frontmatter here\n")
	require.ErrorIs(t, err, ErrMissingDelimiters)

	_, _, err = Split("---\ntemplate: main\nnever closed\n")
	require.ErrorIs(t, err, ErrMissingDelimiters)
}

func TestSplitCRLF(t *testing.T) {
	block, body, err := Split("---\r\ntemplate: main\r\n---\r\ncontent\r\n")
	require.NoError(t, err)
	require.Equal(t, "template: main", block)
	require.Equal(t, "content", body)
}

func TestSplitClosingDelimiterAtEOF(t *testing.T) {
	block, body, err := Split("---\ntemplate: main\n---")
	require.NoError(t, err)
	require.Equal(t, "template: main", block)
	require.Equal(t, "", body)
}

func TestSplitContentKeepsLaterDashes(t *testing.T) {
	_, body, err := Split("---\ntemplate: main\n---\nfirst\n\n---\n\nsecond\n")
	require.NoError(t, err)
	require.Contains(t, body, "first")
	require.Contains(t, body, "second")
	require.Contains(t, body, "---")
}

func TestParseYAML(t *testing.T) {
	fields, err := ParseYAML("template: main\ntags:\n  - a\n  - b\n")
	require.NoError(t, err)
	require.Equal(t, "main", fields["template"])
	require.Equal(t, []any{"a", "b"}, fields["tags"])
}

func TestParseYAMLEmpty(t *testing.T) {
	fields, err := ParseYAML("")
	require.NoError(t, err)
	require.Empty(t, fields)
}

func TestParseYAMLInvalid(t *testing.T) {
	_, err := ParseYAML("template: [unclosed")
	require.Error(t, err)
}
