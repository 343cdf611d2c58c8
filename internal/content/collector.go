package content

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/flora-ssg/flora/internal/errors"
	"github.com/flora-ssg/flora/internal/frontmatter"
	"github.com/flora-ssg/flora/internal/project"
	"github.com/flora-ssg/flora/internal/util/literal"
)

// Collector reads content records from a project layout. It holds no state
// across builds; every build collects from scratch.
type Collector struct {
	layout *project.Layout
}

// NewCollector creates a collector for the given project layout.
func NewCollector(layout *project.Layout) *Collector {
	return &Collector{layout: layout}
}

// parseFrontmatterFile reads a source file and splits it into its parsed
// frontmatter fields and its raw (not yet rendered) content.
func parseFrontmatterFile(path string) (map[string]any, string, error) {
	slog.Debug("Parsing frontmatter file", "path", path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.FileOrDirNotFound("No such file: '%s'.", path)
	}

	block, body, err := frontmatter.Split(string(raw))
	if err != nil {
		if stderrors.Is(err, frontmatter.ErrMissingDelimiters) {
			return nil, "", errors.MissingElement("%s: Missing frontmatter.", path)
		}
		return nil, "", errors.Wrap(err, errors.KindMissingElement, path+": Missing frontmatter.")
	}

	fields, err := frontmatter.ParseYAML(block)
	if err != nil {
		return nil, "", errors.YAML("%s: Error parsing frontmatter (invalid YAML).", path)
	}
	return fields, body, nil
}

// requireString extracts a mandatory string-typed frontmatter key.
func requireString(fields map[string]any, key, sourceFile string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", errors.MissingElement("%s: Missing '%s' key in frontmatter.", sourceFile, key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", errors.WrongTypeOrFormat(
			"%s: Expected type 'string' but got '%s' for key '%s'.",
			sourceFile, literal.TypeName(raw), key,
		)
	}
	return value, nil
}

// stringList extracts an optional list-of-strings frontmatter key, defaulting
// to an empty list. The error for a non-string element cites the element
// itself.
func stringList(fields map[string]any, key, elementNoun, sourceFile string) ([]string, error) {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return []string{}, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, errors.WrongTypeOrFormat(
			"%s: Expected type 'list' but got '%s' for key '%s'.",
			sourceFile, literal.TypeName(raw), key,
		)
	}
	out := make([]string, 0, len(list))
	for _, element := range list {
		s, ok := element.(string)
		if !ok {
			return nil, errors.WrongTypeOrFormat(
				"%s: Expected type 'string' but got '%s' for %s '%s'.",
				sourceFile, literal.TypeName(element), elementNoun, literal.String(element),
			)
		}
		out = append(out, s)
	}
	return out, nil
}

// splitPathElements splits a filepath into directory, name and extension
// (without the leading dot).
func splitPathElements(p string) (dir, name, ext string) {
	dir, file := filepath.Split(p)
	ext = filepath.Ext(file)
	name = strings.TrimSuffix(file, ext)
	return dir, name, strings.TrimPrefix(ext, ".")
}

// validatePermalink enforces the permalink rules for regular pages and
// returns the normalized permalink.
func validatePermalink(raw any, name, sourceFile string) (string, error) {
	p, ok := raw.(string)
	if !ok {
		return "", errors.WrongTypeOrFormat(
			"%s: Expected type 'string' but got '%s' for key 'permalink'.",
			sourceFile, literal.TypeName(raw),
		)
	}
	if !strings.HasPrefix(p, "/") {
		return "", errors.WrongTypeOrFormat("%s: Relative permalink '%s'.", sourceFile, p)
	}
	for _, segment := range strings.Split(p, "/") {
		if segment == "." || segment == ".." {
			return "", errors.WrongTypeOrFormat("%s: Malformed permalink '%s'.", sourceFile, p)
		}
	}
	norm := path.Clean(p)
	if norm == "/" {
		return "", errors.WrongTypeOrFormat(
			"%s: Illegal index permalink '%s'; the permalink would overwrite the site index.",
			sourceFile, p,
		)
	}
	if norm == "/"+name {
		return "", errors.WrongTypeOrFormat("%s: Redundant root permalink '%s'.", sourceFile, p)
	}
	return norm, nil
}

// Pages collects the regular pages of the project, non-recursively.
func (c *Collector) Pages() ([]*Page, error) {
	files, err := c.layout.PageFiles()
	if err != nil {
		return nil, err
	}

	pages := make([]*Page, 0, len(files))
	for _, file := range files {
		slog.Debug("Collecting page", "path", file)
		fields, body, err := parseFrontmatterFile(file)
		if err != nil {
			return nil, err
		}

		template, err := requireString(fields, "template", file)
		if err != nil {
			return nil, err
		}

		permalink := ""
		if raw, ok := fields["permalink"]; ok {
			permalink, err = validatePermalink(raw, pageName(file), file)
			if err != nil {
				return nil, err
			}
		}

		pages = append(pages, &Page{
			Template:   template,
			Name:       pageName(file),
			Content:    body,
			SourceFile: file,
			Permalink:  permalink,
			Extra:      fields,
		})
	}
	return pages, nil
}

func pageName(file string) string {
	_, name, _ := splitPathElements(file)
	return name
}

// Data collects every JSON data file except the config file, keyed by
// filename stem.
func (c *Collector) Data() (map[string]any, error) {
	files, err := c.layout.DataFiles()
	if err != nil {
		return nil, err
	}

	data := make(map[string]any, len(files))
	for _, file := range files {
		_, name, _ := splitPathElements(file)
		// The config file is handled separately by the config package.
		if name == "config" {
			continue
		}
		value, err := parseJSONFile(file)
		if err != nil {
			return nil, err
		}
		data[name] = value
	}
	return data, nil
}

func parseJSONFile(file string) (any, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.FileOrDirNotFound("No such file: '%s'.", file)
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, errors.JSON("%s: %s.", file, strings.TrimSuffix(err.Error(), "."))
	}
	return value, nil
}

// UserDataPages collects the pages of every user-defined underscore-prefixed
// directory, keyed by directory name with the underscore stripped.
func (c *Collector) UserDataPages() (map[string][]*Page, error) {
	dirs, err := c.layout.UserDataDirs()
	if err != nil {
		return nil, err
	}

	data := make(map[string][]*Page, len(dirs))
	for _, dir := range dirs {
		category := strings.TrimPrefix(filepath.Base(dir), "_")
		files, err := project.MarkdownFiles(dir)
		if err != nil {
			return nil, err
		}

		pages := make([]*Page, 0, len(files))
		for _, file := range files {
			slog.Debug("Collecting user data page", "path", file)
			fields, body, err := parseFrontmatterFile(file)
			if err != nil {
				return nil, err
			}

			template, err := requireString(fields, "template", file)
			if err != nil {
				return nil, err
			}

			// User data pages are always placed at their category path;
			// they have no independent addressing scheme.
			if _, ok := fields["permalink"]; ok {
				return nil, errors.WrongTypeOrFormat(
					"%s: Key 'permalink' is not allowed in user data pages.", file,
				)
			}

			name := pageName(file)
			pages = append(pages, &Page{
				Template:   template,
				Name:       name,
				Content:    body,
				SourceFile: file,
				URL:        category + "/" + name,
				Extra:      fields,
			})
		}
		data[category] = pages
	}
	return data, nil
}
