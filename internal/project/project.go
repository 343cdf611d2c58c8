// Package project models the conventional directory layout of a site project
// and provides the directory-listing utility shared by all collectors.
package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flora-ssg/flora/internal/errors"
)

// File suffixes recognized by the collectors.
var (
	MarkdownSuffixes   = []string{".md", ".markdown"}
	TemplateSuffixes   = []string{".html", ".htm"}
	DataSuffixes       = []string{".json"}
	StylesheetSuffixes = []string{".css", ".scss", ".sass"}
	ScriptSuffixes     = []string{".js"}
	ImageSuffixes      = []string{".jpg", ".JPG", ".jpeg", ".JPEG", ".png", ".PNG"}
)

// Layout resolves the conventional directories of a project rooted at an
// absolute path.
type Layout struct {
	root string
}

// New validates the project directory and returns its layout. The path is
// made absolute so later lookups are stable regardless of working directory.
func New(projectDir string) (*Layout, error) {
	info, err := os.Stat(projectDir)
	if err != nil || !info.IsDir() {
		return nil, errors.FileOrDirNotFound("Invalid project directory: '%s'.", projectDir)
	}
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindFileOrDirNotFound, "Invalid project directory: '"+projectDir+"'.")
	}
	return &Layout{root: abs}, nil
}

// Root returns the absolute project directory.
func (l *Layout) Root() string { return l.root }

func (l *Layout) TemplatesDir() string   { return filepath.Join(l.root, "_templates") }
func (l *Layout) PagesDir() string       { return filepath.Join(l.root, "_pages") }
func (l *Layout) StylesheetsDir() string { return filepath.Join(l.root, "_css") }
func (l *Layout) ScriptsDir() string     { return filepath.Join(l.root, "_js") }
func (l *Layout) PostsDir() string       { return filepath.Join(l.root, "_posts") }
func (l *Layout) DraftsDir() string      { return filepath.Join(l.root, "_drafts") }
func (l *Layout) DataDir() string        { return filepath.Join(l.root, "_data") }
func (l *Layout) AssetsDir() string      { return filepath.Join(l.root, "_assets") }

// BuildDir is the output directory, fully owned and recreated by the
// generator.
func (l *Layout) BuildDir() string { return filepath.Join(l.root, "_site") }

// ConfigFile returns where the site config is expected; the file itself may
// not exist.
func (l *Layout) ConfigFile() string { return filepath.Join(l.DataDir(), "config.json") }

// ProtectedDirs lists the directories recognized by convention. Any other
// underscore-prefixed directory under the root is a user data page directory.
func (l *Layout) ProtectedDirs() []string {
	return []string{
		l.TemplatesDir(),
		l.PagesDir(),
		l.StylesheetsDir(),
		l.ScriptsDir(),
		l.PostsDir(),
		l.DraftsDir(),
		l.DataDir(),
		l.AssetsDir(),
		l.BuildDir(),
	}
}

// ListOptions parameterize a directory listing.
type ListOptions struct {
	Prefixes  []string
	Suffixes  []string
	FilesOnly bool
	DirsOnly  bool
	Recursive bool
}

// List collects entries from a directory, filtered by the options, in sorted
// order. A missing directory is an error; callers that treat a directory as
// optional check for it first.
func List(dir string, opts ListOptions) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.FileOrDirNotFound("No such directory: '%s'.", dir)
	}

	var all []string
	if opts.Recursive {
		err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != dir {
				all = append(all, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.KindFileOrDirNotFound, "No such directory: '"+dir+"'.")
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.FileOrDirNotFound("No such directory: '%s'.", dir)
		}
		for _, e := range entries {
			all = append(all, filepath.Join(dir, e.Name()))
		}
	}

	out := all[:0]
	for _, path := range all {
		if opts.FilesOnly || opts.DirsOnly {
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if opts.FilesOnly && info.IsDir() {
				continue
			}
			if opts.DirsOnly && !info.IsDir() {
				continue
			}
		}
		if len(opts.Prefixes) > 0 && !hasAnyPrefix(filepath.Base(path), opts.Prefixes) {
			continue
		}
		if len(opts.Suffixes) > 0 && !hasAnySuffix(path, opts.Suffixes) {
			continue
		}
		out = append(out, path)
	}

	sort.Strings(out)
	return out, nil
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func hasAnySuffix(path string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

func listOptional(dir string, opts ListOptions) ([]string, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, nil
	}
	return List(dir, opts)
}

// MarkdownFiles lists the Markdown files directly inside dir, or nothing if
// the directory does not exist. It never recurses.
func MarkdownFiles(dir string) ([]string, error) {
	return listOptional(dir, ListOptions{Suffixes: MarkdownSuffixes, FilesOnly: true})
}

func (l *Layout) PageFiles() ([]string, error)  { return MarkdownFiles(l.PagesDir()) }
func (l *Layout) PostFiles() ([]string, error)  { return MarkdownFiles(l.PostsDir()) }
func (l *Layout) DraftFiles() ([]string, error) { return MarkdownFiles(l.DraftsDir()) }

func (l *Layout) TemplateFiles() ([]string, error) {
	return listOptional(l.TemplatesDir(), ListOptions{Suffixes: TemplateSuffixes, FilesOnly: true})
}

func (l *Layout) DataFiles() ([]string, error) {
	return listOptional(l.DataDir(), ListOptions{Suffixes: DataSuffixes, FilesOnly: true})
}

func (l *Layout) StylesheetFiles() ([]string, error) {
	return listOptional(l.StylesheetsDir(), ListOptions{Suffixes: StylesheetSuffixes, FilesOnly: true, Recursive: true})
}

func (l *Layout) ScriptFiles() ([]string, error) {
	return listOptional(l.ScriptsDir(), ListOptions{Suffixes: ScriptSuffixes, FilesOnly: true, Recursive: true})
}

func (l *Layout) ImageFiles() ([]string, error) {
	return listOptional(l.AssetsDir(), ListOptions{Suffixes: ImageSuffixes, FilesOnly: true, Recursive: true})
}

// UserDataDirs lists the underscore-prefixed directories under the project
// root that are not protected by convention.
func (l *Layout) UserDataDirs() ([]string, error) {
	dirs, err := List(l.root, ListOptions{Prefixes: []string{"_"}, DirsOnly: true})
	if err != nil {
		return nil, err
	}
	protected := make(map[string]bool, len(l.ProtectedDirs()))
	for _, d := range l.ProtectedDirs() {
		protected[d] = true
	}
	out := dirs[:0]
	for _, d := range dirs {
		// Anything starting with the build directory name is generator
		// owned, including in-progress staging directories.
		if protected[d] || strings.HasPrefix(filepath.Base(d), "_site") {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// Resources lists every path whose modification invalidates a previous
// build: source files plus the directories that contain them, so that adding
// or removing a file is detected too.
func (l *Layout) Resources(includeDrafts bool) ([]string, error) {
	var resources []string

	collect := func(files []string, err error) error {
		if err != nil {
			return err
		}
		resources = append(resources, files...)
		return nil
	}

	if err := collect(l.PageFiles()); err != nil {
		return nil, err
	}
	if err := collect(l.TemplateFiles()); err != nil {
		return nil, err
	}
	if err := collect(l.PostFiles()); err != nil {
		return nil, err
	}
	if err := collect(l.DataFiles()); err != nil {
		return nil, err
	}
	if err := collect(l.StylesheetFiles()); err != nil {
		return nil, err
	}
	if err := collect(l.ScriptFiles()); err != nil {
		return nil, err
	}

	for _, dir := range []string{
		l.PagesDir(), l.TemplatesDir(), l.PostsDir(),
		l.DataDir(), l.StylesheetsDir(), l.ScriptsDir(),
	} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			resources = append(resources, dir)
		}
	}

	if info, err := os.Stat(l.AssetsDir()); err == nil && info.IsDir() {
		files, err := List(l.AssetsDir(), ListOptions{FilesOnly: true, Recursive: true})
		if err != nil {
			return nil, err
		}
		resources = append(resources, files...)
		resources = append(resources, l.AssetsDir())
	}

	userDirs, err := l.UserDataDirs()
	if err != nil {
		return nil, err
	}
	for _, dir := range userDirs {
		files, err := MarkdownFiles(dir)
		if err != nil {
			return nil, err
		}
		resources = append(resources, files...)
		resources = append(resources, dir)
	}

	if includeDrafts {
		if err := collect(l.DraftFiles()); err != nil {
			return nil, err
		}
		if info, err := os.Stat(l.DraftsDir()); err == nil && info.IsDir() {
			resources = append(resources, l.DraftsDir())
		}
	}

	return resources, nil
}
