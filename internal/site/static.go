package site

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bep/godartsass/v2"

	"github.com/flora-ssg/flora/internal/errors"
	"github.com/flora-ssg/flora/internal/project"
)

// buildStylesheets compiles the Sass/SCSS sources to compressed CSS and
// copies plain CSS files as they are, preserving the directory structure.
// Underscore-prefixed Sass files are partials and produce no output of
// their own.
func (g *Generator) buildStylesheets(buildDir string) error {
	if _, err := os.Stat(g.layout.StylesheetsDir()); err != nil {
		return nil
	}
	files, err := g.layout.StylesheetFiles()
	if err != nil {
		return err
	}

	var transpiler *godartsass.Transpiler
	defer func() {
		if transpiler != nil {
			transpiler.Close()
		}
	}()

	for _, file := range files {
		rel, err := filepath.Rel(g.layout.StylesheetsDir(), file)
		if err != nil {
			return errors.General("%s: cannot resolve destination path.", file)
		}
		dest := filepath.Join(buildDir, "css", rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return errors.Wrap(err, errors.KindGeneral, fmt.Sprintf("Cannot create directory '%s'.", filepath.Dir(dest)))
		}

		ext := filepath.Ext(file)
		if ext == ".css" {
			if err := copyFilePreserving(file, dest); err != nil {
				return err
			}
			continue
		}

		// Sass partials are only ever pulled in by other stylesheets.
		if strings.HasPrefix(filepath.Base(file), "_") {
			continue
		}

		if transpiler == nil {
			transpiler, err = godartsass.Start(godartsass.Options{})
			if err != nil {
				return errors.Wrap(err, errors.KindGeneral, "Cannot start the Sass compiler; is dart-sass installed?")
			}
		}

		source, err := os.ReadFile(file)
		if err != nil {
			return errors.FileOrDirNotFound("No such file: '%s'.", file)
		}
		syntax := godartsass.SourceSyntaxSCSS
		if ext == ".sass" {
			syntax = godartsass.SourceSyntaxSASS
		}
		slog.Debug("Compiling stylesheet", "path", file)
		result, err := transpiler.Execute(godartsass.Args{
			Source:       string(source),
			SourceSyntax: syntax,
			OutputStyle:  godartsass.OutputStyleCompressed,
			IncludePaths: []string{filepath.Dir(file)},
		})
		if err != nil {
			return errors.General("%s: %s.", file, strings.TrimSuffix(err.Error(), "."))
		}

		dest = strings.TrimSuffix(dest, ext) + ".css"
		if err := os.WriteFile(dest, []byte(result.CSS), 0o644); err != nil {
			return errors.Wrap(err, errors.KindGeneral, fmt.Sprintf("Cannot write file '%s'.", dest))
		}
	}
	return nil
}

// buildScripts copies the scripts directory into the build directory,
// preserving its structure.
func (g *Generator) buildScripts(buildDir string) error {
	if _, err := os.Stat(g.layout.ScriptsDir()); err != nil {
		return nil
	}
	return copyTree(g.layout.ScriptsDir(), filepath.Join(buildDir, "js"), nil)
}

// buildAssets copies the assets directory into the build directory. Image
// files are left out; the image pipeline owns those outputs.
func (g *Generator) buildAssets(buildDir string) error {
	if _, err := os.Stat(g.layout.AssetsDir()); err != nil {
		return nil
	}
	return copyTree(g.layout.AssetsDir(), filepath.Join(buildDir, "assets"), func(path string) bool {
		ext := filepath.Ext(path)
		for _, suffix := range project.ImageSuffixes {
			if ext == suffix {
				return true
			}
		}
		return false
	})
}

// copyTree copies src into dest recursively, preserving permissions and
// modification times. Files for which skip returns true are not copied.
func copyTree(src, dest string, skip func(path string) bool) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrap(err, errors.KindGeneral, fmt.Sprintf("Cannot read '%s'.", path))
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return errors.General("%s: cannot resolve destination path.", path)
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrap(err, errors.KindGeneral, fmt.Sprintf("Cannot create directory '%s'.", target))
			}
			return nil
		}
		if skip != nil && skip(path) {
			return nil
		}
		return copyFilePreserving(path, target)
	})
}

// copyFilePreserving copies a single file, carrying over permissions and
// modification time.
func copyFilePreserving(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.FileOrDirNotFound("No such file: '%s'.", src)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrap(err, errors.KindGeneral, fmt.Sprintf("Cannot read '%s'.", src))
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return errors.Wrap(err, errors.KindGeneral, fmt.Sprintf("Cannot write file '%s'.", dest))
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrap(err, errors.KindGeneral, fmt.Sprintf("Cannot write file '%s'.", dest))
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(err, errors.KindGeneral, fmt.Sprintf("Cannot write file '%s'.", dest))
	}
	return os.Chtimes(dest, info.ModTime(), info.ModTime())
}
