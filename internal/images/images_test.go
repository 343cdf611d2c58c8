package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flora-ssg/flora/internal/config"
	"github.com/flora-ssg/flora/internal/errors"
)

func writePNG(t *testing.T, path string, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return buf.Bytes()
}

func TestFullSizeCopyIsByteIdentical(t *testing.T) {
	root := t.TempDir()
	assets := filepath.Join(root, "_assets")
	build := filepath.Join(root, "_site", "assets")
	source := filepath.Join(assets, "logo.png")
	original := writePNG(t, source, 10, 10)

	mtime := time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(source, mtime, mtime))

	pipeline := NewPipeline(assets, build, []config.ImageSpec{config.DefaultImageSpec})
	require.NoError(t, pipeline.Build([]string{source}))

	copied, err := os.ReadFile(filepath.Join(build, "logo.png"))
	require.NoError(t, err)
	require.Equal(t, original, copied)

	info, err := os.Stat(filepath.Join(build, "logo.png"))
	require.NoError(t, err)
	require.True(t, info.ModTime().Equal(mtime))
}

func TestResizedDimensions(t *testing.T) {
	root := t.TempDir()
	assets := filepath.Join(root, "_assets")
	build := filepath.Join(root, "_site", "assets")
	source := filepath.Join(assets, "photos", "pic.png")
	writePNG(t, source, 100, 40)

	pipeline := NewPipeline(assets, build, []config.ImageSpec{
		{Size: 0.5, Suffix: "-small", Optimize: false},
	})
	require.NoError(t, pipeline.Build([]string{source}))

	out, err := os.Open(filepath.Join(build, "photos", "pic-small.png"))
	require.NoError(t, err)
	defer out.Close()

	decoded, err := png.Decode(out)
	require.NoError(t, err)
	require.Equal(t, 50, decoded.Bounds().Dx())
	require.Equal(t, 20, decoded.Bounds().Dy())
}

func TestSuffixPlacedBeforeExtension(t *testing.T) {
	root := t.TempDir()
	assets := filepath.Join(root, "_assets")
	build := filepath.Join(root, "_site", "assets")
	source := filepath.Join(assets, "pic.png")
	writePNG(t, source, 8, 8)

	pipeline := NewPipeline(assets, build, []config.ImageSpec{
		{Size: 1, Suffix: "", Optimize: false},
		{Size: 0.5, Suffix: "-thumb", Optimize: true},
	})
	require.NoError(t, pipeline.Build([]string{source}))

	require.FileExists(t, filepath.Join(build, "pic.png"))
	require.FileExists(t, filepath.Join(build, "pic-thumb.png"))
}

func TestSmallerSizeYieldsSmallerFiles(t *testing.T) {
	root := t.TempDir()
	assets := filepath.Join(root, "_assets")
	build := filepath.Join(root, "_site", "assets")
	source := filepath.Join(assets, "pic.png")
	writePNG(t, source, 200, 150)

	pipeline := NewPipeline(assets, build, []config.ImageSpec{
		{Size: 0.3, Suffix: "-s", Optimize: true},
		{Size: 0.8, Suffix: "-l", Optimize: true},
	})
	require.NoError(t, pipeline.Build([]string{source}))

	small, err := os.Stat(filepath.Join(build, "pic-s.png"))
	require.NoError(t, err)
	large, err := os.Stat(filepath.Join(build, "pic-l.png"))
	require.NoError(t, err)
	require.LessOrEqual(t, small.Size(), large.Size())
}

func TestUndecodableImage(t *testing.T) {
	root := t.TempDir()
	assets := filepath.Join(root, "_assets")
	source := filepath.Join(assets, "broken.png")
	require.NoError(t, os.MkdirAll(assets, 0o755))
	require.NoError(t, os.WriteFile(source, []byte("not an image"), 0o644))

	pipeline := NewPipeline(assets, filepath.Join(root, "out"), []config.ImageSpec{
		{Size: 0.5, Suffix: "-s", Optimize: false},
	})
	err := pipeline.Build([]string{source})
	require.True(t, errors.IsKind(err, errors.KindImage))
	require.Contains(t, err.Error(), source)
}
