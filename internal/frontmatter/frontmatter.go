// Package frontmatter splits and parses the YAML frontmatter block that every
// content source file must begin with.
package frontmatter

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingDelimiters indicates the document does not begin with a
// `---` ... `---` delimiter pair.
var ErrMissingDelimiters = errors.New("missing frontmatter delimiters")

// Split separates the frontmatter block from the content body.
//
// A source file must begin with a line of exactly three dashes, followed by
// the block, followed by another three-dash line. The returned body is the
// remainder of the file with surrounding whitespace trimmed; it is raw
// source, not yet rendered.
func Split(content string) (block string, body string, err error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return "", "", ErrMissingDelimiters
	}

	rest := normalized[len("---\n"):]
	if strings.HasPrefix(rest, "---\n") || rest == "---" {
		return "", strings.TrimSpace(strings.TrimPrefix(rest, "---")), nil
	}

	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		if strings.HasSuffix(rest, "\n---") {
			return rest[:len(rest)-len("\n---")], "", nil
		}
		return "", "", ErrMissingDelimiters
	}

	block = rest[:idx]
	body = strings.TrimSpace(rest[idx+len("\n---\n"):])
	return block, body, nil
}

// ParseYAML parses a raw frontmatter block (without delimiters) into a map.
// An empty block parses to an empty map.
func ParseYAML(block string) (map[string]any, error) {
	if strings.TrimSpace(block) == "" {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal([]byte(block), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}
