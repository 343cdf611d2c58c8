// Package config loads and validates the site configuration
// (_data/config.json). Unrecognized top-level keys pass through verbatim to
// templates; the highlight style and image derivative list have enforced
// schemas.
package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"

	"github.com/flora-ssg/flora/internal/errors"
	"github.com/flora-ssg/flora/internal/util/literal"
)

// ImageSpec describes one image derivative: a scale factor in (0, 1], a
// filename suffix inserted before the extension, and an optimization flag.
type ImageSpec struct {
	Size     float64
	Suffix   string
	Optimize bool
}

// DefaultImageSpec is the derivative used when the config declares none: an
// unmodified full-size copy.
var DefaultImageSpec = ImageSpec{Size: 1, Suffix: "", Optimize: false}

// Config is the validated site configuration.
type Config struct {
	// Values is the full configuration object, exposed verbatim to
	// templates as `site.config`.
	Values map[string]any

	// Path is where the config was loaded from, used in error messages. It
	// is set even when the defaults were used.
	Path string
}

func defaults(path string) *Config {
	return &Config{
		Values: map[string]any{
			"pygments_style": nil,
			"images": []any{
				map[string]any{"size": float64(1), "suffix": "", "optimize": false},
			},
		},
		Path: path,
	}
}

// Load reads the config file if it exists, or returns the built-in defaults.
// A parse error is fatal and names the file and the parser's message.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("Loading default site config (no config file found)")
			return defaults(path), nil
		}
		return nil, errors.Wrap(err, errors.KindJSON, path+": cannot read config file.")
	}

	slog.Debug("Loading site config file", "path", path)
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, errors.JSON("%s: %s.", path, strings.TrimSuffix(err.Error(), "."))
	}
	return &Config{Values: values, Path: path}, nil
}

// HighlightStyle resolves the configured syntax highlighting style. An absent
// key means no style; a present key must be a string naming a style known to
// the highlighter.
func (c *Config) HighlightStyle() (string, error) {
	v, ok := c.Values["pygments_style"]
	if !ok || v == nil {
		return "", nil
	}

	style, ok := v.(string)
	if !ok {
		return "", errors.WrongTypeOrFormat(
			"%s: Expected type 'string' but got '%s' for key 'pygments_style'.",
			c.Path, literal.TypeName(v),
		)
	}

	known := styles.Names()
	for _, name := range known {
		if name == style {
			return style, nil
		}
	}
	return "", errors.WrongTypeOrFormat(
		"%s: Style '%s' is not a valid highlight style (%s).",
		c.Path, style, strings.Join(known, ", "),
	)
}

// ImageSpecs resolves and validates the image derivative list. Each element
// is validated independently; error messages embed the element's literal
// representation and the config file path.
func (c *Config) ImageSpecs() ([]ImageSpec, error) {
	v, ok := c.Values["images"]
	if !ok || v == nil {
		return []ImageSpec{DefaultImageSpec}, nil
	}

	list, ok := v.([]any)
	if !ok {
		return nil, errors.WrongTypeOrFormat(
			"%s: Expected type 'list' but got '%s' for key 'images'.",
			c.Path, literal.TypeName(v),
		)
	}

	specs := make([]ImageSpec, 0, len(list))
	for _, element := range list {
		spec, err := c.validateImageSpec(element)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (c *Config) validateImageSpec(element any) (ImageSpec, error) {
	var spec ImageSpec

	fields, ok := element.(map[string]any)
	if !ok {
		return spec, errors.WrongTypeOrFormat(
			"%s: Expected type 'mapping' but got '%s' for element '%s' in key 'images'.",
			c.Path, literal.TypeName(element), literal.String(element),
		)
	}

	// Work on a copy so leftover-key detection does not ruin the original.
	remaining := make(map[string]any, len(fields))
	for k, v := range fields {
		remaining[k] = v
	}

	rawSize, ok := remaining["size"]
	if !ok {
		return spec, errors.MissingElement(
			"%s: Missing key 'size' in element '%s' in key 'images'.",
			c.Path, literal.String(element),
		)
	}
	delete(remaining, "size")
	size, ok := rawSize.(float64)
	if !ok {
		return spec, errors.WrongTypeOrFormat(
			"%s: Expected type 'number' but got '%s' for key 'size' in element '%s' in key 'images'.",
			c.Path, literal.TypeName(rawSize), literal.String(element),
		)
	}
	if size <= 0 || size > 1 {
		return spec, errors.WrongTypeOrFormat(
			"%s: Expected key 'size' to be in range (0, 1] but got '%v' in element '%s' in key 'images'.",
			c.Path, size, literal.String(element),
		)
	}

	rawSuffix, ok := remaining["suffix"]
	if !ok {
		return spec, errors.MissingElement(
			"%s: Missing key 'suffix' in element '%s' in key 'images'.",
			c.Path, literal.String(element),
		)
	}
	delete(remaining, "suffix")
	suffix, ok := rawSuffix.(string)
	if !ok {
		return spec, errors.WrongTypeOrFormat(
			"%s: Expected type 'string' but got '%s' for key 'suffix' in element '%s' in key 'images'.",
			c.Path, literal.TypeName(rawSuffix), literal.String(element),
		)
	}

	rawOptimize, ok := remaining["optimize"]
	if !ok {
		return spec, errors.MissingElement(
			"%s: Missing key 'optimize' in element '%s' in key 'images'.",
			c.Path, literal.String(element),
		)
	}
	delete(remaining, "optimize")
	optimize, ok := rawOptimize.(bool)
	if !ok {
		return spec, errors.WrongTypeOrFormat(
			"%s: Expected type 'bool' but got '%s' for key 'optimize' in element '%s' in key 'images'.",
			c.Path, literal.TypeName(rawOptimize), literal.String(element),
		)
	}

	if len(remaining) > 0 {
		keys := make([]string, 0, len(remaining))
		for k := range remaining {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return spec, errors.WrongTypeOrFormat(
			"%s: Unexpected keys '%s' in element '%s' in key 'images'.",
			c.Path, strings.Join(keys, ", "), literal.String(element),
		)
	}

	return ImageSpec{Size: size, Suffix: suffix, Optimize: optimize}, nil
}
