// Package site implements the build pipeline: it assembles the site context
// from the project's content, renders every record through the two-phase
// render, and lays out the finished site under the build directory.
package site

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/flora-ssg/flora/internal/config"
	"github.com/flora-ssg/flora/internal/content"
	"github.com/flora-ssg/flora/internal/errors"
	"github.com/flora-ssg/flora/internal/images"
	"github.com/flora-ssg/flora/internal/markdown"
	"github.com/flora-ssg/flora/internal/metrics"
	"github.com/flora-ssg/flora/internal/project"
	"github.com/flora-ssg/flora/internal/util/sets"
)

// Scaffold contents written by Init.
const (
	initTemplateFile = `<!DOCTYPE html>
<html>
    <head>
        <title> {{ .site.config.title }} </title>
    </head>
    <body>
        {{ .page.content }}
    </body>
</html>
`

	initPageFile = `---
template: main
---
This site is built with Flora!
`
)

// BuildOptions controls a single build invocation.
type BuildOptions struct {
	// IncludeDrafts publishes the drafts directory alongside the posts.
	IncludeDrafts bool
	// DisableImageBuild skips the image derivative pipeline. Useful to
	// speed up consecutive builds of image-heavy sites.
	DisableImageBuild bool
}

// Generator builds a site from a project directory.
type Generator struct {
	layout   *project.Layout
	recorder metrics.Recorder
}

// New creates a generator for the given project directory. The directory
// must exist.
func New(projectDir string) (*Generator, error) {
	layout, err := project.New(projectDir)
	if err != nil {
		return nil, err
	}
	return &Generator{layout: layout, recorder: metrics.NoopRecorder{}}, nil
}

// Layout exposes the project directory conventions.
func (g *Generator) Layout() *project.Layout { return g.layout }

// SetRecorder replaces the build metrics recorder. The default discards
// all events.
func (g *Generator) SetRecorder(r metrics.Recorder) {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	g.recorder = r
}

// Init scaffolds a minimal site: a config file, one template and one page.
func (g *Generator) Init() error {
	slog.Info(fmt.Sprintf("Initializing basic site at '%s'...", g.layout.Root()))

	for _, dir := range []string{g.layout.DataDir(), g.layout.TemplatesDir(), g.layout.PagesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.KindGeneral, fmt.Sprintf("Cannot create directory '%s'.", dir))
		}
	}

	scaffold := []struct {
		path    string
		content string
	}{
		{g.layout.ConfigFile(), initConfigFile(g.layout.Root())},
		{filepath.Join(g.layout.TemplatesDir(), "main.html"), initTemplateFile},
		{filepath.Join(g.layout.PagesDir(), "index.md"), initPageFile},
	}
	for _, f := range scaffold {
		if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
			return errors.Wrap(err, errors.KindGeneral, fmt.Sprintf("Cannot write file '%s'.", f.path))
		}
	}

	slog.Info(fmt.Sprintf("Done! Site initialized at '%s'.", g.layout.Root()))
	return nil
}

// initConfigFile derives a site title from the project directory name.
func initConfigFile(root string) string {
	name := filepath.Base(root)
	if abs, err := filepath.Abs(root); err == nil {
		name = filepath.Base(abs)
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	title := cases.Title(language.English).String(name)
	return fmt.Sprintf("{\n    \"title\": %q\n}\n", title)
}

// Clean removes the build directory. Cleaning an already clean project is
// a no-op.
func (g *Generator) Clean() error {
	slog.Debug("Cleaning project build dir", "dir", g.layout.BuildDir())
	if err := os.RemoveAll(g.layout.BuildDir()); err != nil {
		return errors.Wrap(err, errors.KindGeneral, fmt.Sprintf("Cannot remove build directory '%s'.", g.layout.BuildDir()))
	}
	return nil
}

// Build produces the final site under the build directory. The site is
// rendered into a staging directory and swapped in only on success, so a
// failed build leaves the previous successful output in place and never a
// half-written one.
func (g *Generator) Build(opts BuildOptions) error {
	slog.Info(fmt.Sprintf("Building static site from project directory '%s'...", g.layout.Root()))
	start := time.Now()
	g.recorder.BuildStarted()

	staging, err := os.MkdirTemp(g.layout.Root(), "_site.build-")
	if err != nil {
		g.recorder.BuildFailed()
		return errors.Wrap(err, errors.KindGeneral, "Cannot create build staging directory.")
	}
	os.Chmod(staging, 0o755)

	if err := g.build(opts, staging); err != nil {
		g.recorder.BuildFailed()
		if cleanErr := os.RemoveAll(staging); cleanErr != nil {
			slog.Warn("Failed to clean up after failed build", "error", cleanErr)
		}
		return err
	}

	// Swap the finished site in. Requests holding open file handles on the
	// old tree keep reading it; new requests see the new tree.
	if err := g.Clean(); err != nil {
		os.RemoveAll(staging)
		g.recorder.BuildFailed()
		return err
	}
	if err := os.Rename(staging, g.layout.BuildDir()); err != nil {
		os.RemoveAll(staging)
		g.recorder.BuildFailed()
		return errors.Wrap(err, errors.KindGeneral, fmt.Sprintf("Cannot move finished site into '%s'.", g.layout.BuildDir()))
	}

	elapsed := time.Since(start)
	g.recorder.BuildSucceeded(elapsed)
	slog.Info(fmt.Sprintf("Done (%.2fs)! The finished site is available in '%s'.",
		elapsed.Seconds(), g.layout.BuildDir()))
	return nil
}

func (g *Generator) build(opts BuildOptions, buildDir string) error {
	cfg, err := config.Load(g.layout.ConfigFile())
	if err != nil {
		return err
	}
	highlightStyle, err := cfg.HighlightStyle()
	if err != nil {
		return err
	}
	imageSpecs, err := cfg.ImageSpecs()
	if err != nil {
		return err
	}

	collector := content.NewCollector(g.layout)
	pages, err := collector.Pages()
	if err != nil {
		return err
	}
	templates, err := g.collectTemplates()
	if err != nil {
		return err
	}
	posts, err := collector.Posts(opts.IncludeDrafts)
	if err != nil {
		return err
	}
	data, err := collector.Data()
	if err != nil {
		return err
	}
	userDataPages, err := collector.UserDataPages()
	if err != nil {
		return err
	}

	categories := sets.New[string]()
	tags := sets.New[string]()
	for _, post := range posts {
		for _, category := range post.Categories {
			categories.Add(category)
		}
		for _, tag := range post.Tags {
			tags.Add(tag)
		}
	}

	// The site context holds the live record maps: when a record's content
	// is replaced with its rendered HTML, records rendered later observe
	// the HTML, not the raw source.
	siteData := make(map[string]any)
	var records []*renderRecord

	userCategories := make([]string, 0, len(userDataPages))
	for category := range userDataPages {
		userCategories = append(userCategories, category)
	}
	sort.Strings(userCategories)
	for _, category := range userCategories {
		categoryPages := userDataPages[category]
		contexts := make([]map[string]any, len(categoryPages))
		for i, page := range categoryPages {
			contexts[i] = page.Context()
		}
		siteData[category] = contexts
	}

	pageContexts := make([]map[string]any, len(pages))
	for i, page := range pages {
		pageContexts[i] = page.Context()
		records = append(records, &renderRecord{
			source:   page.SourceFile,
			template: page.Template,
			ctx:      pageContexts[i],
			outputs:  pageOutputs(page),
		})
	}
	siteData["pages"] = pageContexts

	postContexts := make([]map[string]any, len(posts))
	for i, post := range posts {
		postContexts[i] = post.Context()
		records = append(records, &renderRecord{
			source:   post.SourceFile,
			template: post.Template,
			ctx:      postContexts[i],
			outputs:  []string{filepath.Join(post.BaseAddress, post.Name+".html")},
		})
	}
	siteData["posts"] = postContexts

	siteData["data"] = data
	siteData["blog"] = map[string]any{
		"categories": sets.Sorted(categories),
		"tags":       sets.Sorted(tags),
	}
	siteData["config"] = cfg.Values

	// User data pages render after the regular pages and posts, in the
	// order their category contexts were built.
	for _, category := range userCategories {
		categoryPages := userDataPages[category]
		contexts := siteData[category].([]map[string]any)
		for i, page := range categoryPages {
			records = append(records, &renderRecord{
				source:   page.SourceFile,
				template: page.Template,
				ctx:      contexts[i],
				outputs:  []string{filepath.Join(category, page.Name+".html")},
			})
		}
	}

	converter := markdown.NewConverter(highlightStyle)
	written := make(map[string]string)
	for _, rec := range records {
		if err := g.render(rec, templates, siteData, converter); err != nil {
			return err
		}
		if err := g.writeOutputs(rec, written, buildDir); err != nil {
			return err
		}
	}

	if err := g.buildStylesheets(buildDir); err != nil {
		return err
	}
	if err := g.buildScripts(buildDir); err != nil {
		return err
	}
	if err := g.buildAssets(buildDir); err != nil {
		return err
	}

	if !opts.DisableImageBuild {
		imageFiles, err := g.layout.ImageFiles()
		if err != nil {
			return err
		}
		pipeline := images.NewPipeline(g.layout.AssetsDir(), filepath.Join(buildDir, "assets"), imageSpecs)
		if err := pipeline.Build(imageFiles); err != nil {
			return err
		}
	}

	return nil
}

// pageOutputs resolves the build-dir-relative output paths of a page. A
// permalink produces both the bare .html artifact and a directory-index
// artifact so the page answers at both '/foo/bar' and '/foo/bar/'.
func pageOutputs(page *content.Page) []string {
	if page.Permalink == "" {
		return []string{page.Name + ".html"}
	}
	rel := strings.TrimPrefix(page.Permalink, "/")
	return []string{
		filepath.FromSlash(rel) + ".html",
		filepath.Join(filepath.FromSlash(rel), "index.html"),
	}
}

// writeOutputs places a rendered record at each of its output paths,
// warning when a path was already claimed by an earlier record. The later
// record wins.
func (g *Generator) writeOutputs(rec *renderRecord, written map[string]string, buildDir string) error {
	for _, rel := range rec.outputs {
		dest := filepath.Join(buildDir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return errors.Wrap(err, errors.KindGeneral, fmt.Sprintf("Cannot create directory '%s'.", filepath.Dir(dest)))
		}
		if previous, ok := written[rel]; ok {
			slog.Warn(fmt.Sprintf("Output conflict: '%s' from '%s' overwrites the version from '%s'.",
				rel, rec.source, previous))
		}
		written[rel] = rec.source
		if err := os.WriteFile(dest, rec.rendered, 0o644); err != nil {
			return errors.Wrap(err, errors.KindGeneral, fmt.Sprintf("Cannot write file '%s'.", dest))
		}
	}
	return nil
}
