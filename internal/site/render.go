package site

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/flora-ssg/flora/internal/errors"
	"github.com/flora-ssg/flora/internal/markdown"
)

// siteTemplate is a parsed page template, matched against records by the
// stem of its filename.
type siteTemplate struct {
	name string
	path string
	tmpl *template.Template
}

// renderRecord is one renderable content unit (page, post or user data
// page) on its way through the two-phase render.
type renderRecord struct {
	source   string
	template string
	ctx      map[string]any
	outputs  []string
	rendered []byte
}

// collectTemplates parses every template file in the templates directory.
func (g *Generator) collectTemplates() ([]*siteTemplate, error) {
	files, err := g.layout.TemplateFiles()
	if err != nil {
		return nil, err
	}
	templates := make([]*siteTemplate, 0, len(files))
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.FileOrDirNotFound("No such file: '%s'.", file)
		}
		tmpl, err := template.New(templateStem(file)).Parse(string(raw))
		if err != nil {
			line, msg := templateErrorParts(err)
			return nil, errors.Template("%s:%s: %s.", file, line, msg)
		}
		templates = append(templates, &siteTemplate{
			name: templateStem(file),
			path: file,
			tmpl: tmpl,
		})
	}
	return templates, nil
}

func templateStem(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// render runs the two-phase render on a record: first the record's raw
// content is treated as a template source and resolved against the site
// context, then the flattened text is converted to HTML, and finally the
// record's page template renders the full document.
func (g *Generator) render(rec *renderRecord, templates []*siteTemplate, siteData map[string]any, converter *markdown.Converter) error {
	var tmpl *siteTemplate
	for _, candidate := range templates {
		if candidate.name == rec.template {
			tmpl = candidate
			break
		}
	}
	if tmpl == nil {
		return errors.FileOrDirNotFound("%s: Template '%s' not found in %s.",
			rec.source, rec.template, g.layout.TemplatesDir())
	}

	scope := map[string]any{"site": siteData, "page": rec.ctx}

	// Authors can embed template directives in their Markdown (e.g. a loop
	// over site.posts); those have to be resolved before the text can be
	// converted to HTML.
	raw, _ := rec.ctx["content"].(string)
	directives, err := template.New("content").Parse(raw)
	if err != nil {
		_, msg := templateErrorParts(err)
		return errors.Template("%s: %s.", rec.source, msg)
	}
	var flat bytes.Buffer
	if err := directives.Execute(&flat, scope); err != nil {
		_, msg := templateErrorParts(err)
		return errors.Template("%s: %s.", rec.source, msg)
	}

	html, err := converter.Convert(flat.String())
	if err != nil {
		return errors.Template("%s: %s.", rec.source, strings.TrimSuffix(err.Error(), "."))
	}
	rec.ctx["content"] = html

	var out bytes.Buffer
	if err := tmpl.tmpl.Execute(&out, scope); err != nil {
		line, msg := templateErrorParts(err)
		return errors.Template("%s:%s (from %s): %s.", tmpl.path, line, rec.source, msg)
	}
	rec.rendered = out.Bytes()
	return nil
}

// Template errors carry a "template: <name>:<line>[:<col>]:" prefix; pull
// the line number out and drop the prefix from the message.
var templateErrRe = regexp.MustCompile(`^template: [^:]*:(\d+)(?::\d+)?: `)

func templateErrorParts(err error) (line, message string) {
	line = "?"
	message = err.Error()
	if m := templateErrRe.FindStringSubmatch(message); m != nil {
		line = m[1]
		message = message[len(m[0]):]
	} else {
		message = strings.TrimPrefix(message, "template: ")
	}
	return line, strings.TrimSuffix(message, ".")
}
