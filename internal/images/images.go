// Package images builds the output image derivatives: for each source image
// and each configured spec, either a byte-for-byte copy or a resized,
// re-encoded variant.
package images

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/flora-ssg/flora/internal/config"
	"github.com/flora-ssg/flora/internal/errors"
)

// Encoder quality settings. Optimized derivatives trade quality for bytes;
// unoptimized resizes keep quality high.
const (
	jpegQuality          = 95
	jpegQualityOptimized = 75
)

// Pipeline produces image derivatives from the assets directory into the
// assets build directory, preserving relative structure.
type Pipeline struct {
	assetsDir string
	buildDir  string
	specs     []config.ImageSpec
}

// NewPipeline creates an image pipeline.
func NewPipeline(assetsDir, buildDir string, specs []config.ImageSpec) *Pipeline {
	return &Pipeline{assetsDir: assetsDir, buildDir: buildDir, specs: specs}
}

// Build processes every source image against every configured spec.
func (p *Pipeline) Build(files []string) error {
	for i, source := range files {
		slog.Debug("Building image", "path", source, "index", i+1, "total", len(files))
		for _, spec := range p.specs {
			if err := p.buildDerivative(source, spec); err != nil {
				return err
			}
		}
	}
	slog.Debug("Done building images")
	return nil
}

func (p *Pipeline) buildDerivative(source string, spec config.ImageSpec) error {
	sourceDir := filepath.Dir(source)
	base := filepath.Base(source)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	rel, err := filepath.Rel(p.assetsDir, sourceDir)
	if err != nil {
		return errors.Image("%s: cannot resolve destination path.", source)
	}
	destDir := filepath.Join(p.buildDir, rel)
	dest := filepath.Join(destDir, stem+spec.Suffix+ext)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return errors.Wrap(err, errors.KindImage, source+": cannot create destination directory.")
	}

	// Full size and no optimization means the image needs no decoding at
	// all; copy it byte for byte with its metadata.
	if spec.Size == 1 && !spec.Optimize {
		slog.Debug("Copying image", "source", source, "dest", dest)
		return copyPreserving(source, dest)
	}

	slog.Debug("Resizing image", "source", source, "dest", dest, "size", spec.Size, "optimize", spec.Optimize)
	in, err := os.Open(source)
	if err != nil {
		return errors.Image("%s: %s.", source, trimPeriod(err.Error()))
	}
	defer in.Close()

	decoded, _, err := image.Decode(in)
	if err != nil {
		return errors.Image("%s: %s.", source, trimPeriod(err.Error()))
	}

	bounds := decoded.Bounds()
	width := int(math.Round(float64(bounds.Dx()) * spec.Size))
	height := int(math.Round(float64(bounds.Dy()) * spec.Size))
	resized := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(resized, resized.Bounds(), decoded, bounds, draw.Src, nil)

	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(err, errors.KindImage, source+": cannot write destination file.")
	}
	defer out.Close()

	switch strings.ToLower(ext) {
	case ".png":
		encoder := png.Encoder{CompressionLevel: png.DefaultCompression}
		if spec.Optimize {
			encoder.CompressionLevel = png.BestCompression
		}
		err = encoder.Encode(out, resized)
	default:
		quality := jpegQuality
		if spec.Optimize {
			quality = jpegQualityOptimized
		}
		err = jpeg.Encode(out, resized, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return errors.Image("%s: %s.", source, trimPeriod(err.Error()))
	}
	return nil
}

// copyPreserving copies a file byte for byte, carrying over permissions and
// modification time.
func copyPreserving(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return errors.Image("%s: %s.", source, trimPeriod(err.Error()))
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Image("%s: %s.", source, trimPeriod(err.Error()))
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return errors.Wrap(err, errors.KindImage, source+": cannot write destination file.")
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrap(err, errors.KindImage, source+": cannot write destination file.")
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(err, errors.KindImage, source+": cannot write destination file.")
	}
	return os.Chtimes(dest, info.ModTime(), info.ModTime())
}

func trimPeriod(s string) string {
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
