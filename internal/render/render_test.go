package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/researchd/internal/research"
)

func encodeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageStore_SaveResizes(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(dir)

	path, mimeType, err := store.Save(encodeTestPNG(t, 200, 100), research.ImageStylingOptions{
		OutputFormat: "png",
		ResizeWidth:  50,
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.True(t, strings.HasPrefix(path, dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 25, img.Bounds().Dy())
}

func TestImageStore_SaveWithoutResize(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(dir)
	original := encodeTestPNG(t, 64, 64)

	path, mimeType, err := store.Save(original, research.ImageStylingOptions{OutputFormat: "png"})
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestImageStore_SaveRejectsGarbage(t *testing.T) {
	store := NewImageStore(t.TempDir())
	_, _, err := store.Save([]byte("not an image"), research.ImageStylingOptions{
		OutputFormat: "png",
		ResizeWidth:  50,
	})
	require.Error(t, err)
}

func TestResizeToWidth_JPEGQuality(t *testing.T) {
	data, err := resizeToWidth(encodeTestPNG(t, 100, 100), 40, "jpeg", 75)
	require.NoError(t, err)
	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
}

func TestBuildHTML(t *testing.T) {
	r := NewPDFRenderer(t.TempDir(), "", research.PDFStylingOptions{})
	markdown := "# Findings\n\nSome *emphasis* here.\n\n| A | B |\n|---|---|\n| 1 | 2 |\n"

	doc, err := r.buildHTML(markdown, "Melbourne Dining <Guide>", "", research.PDFStylingOptions{})
	require.NoError(t, err)
	assert.Contains(t, doc, "Melbourne Dining &lt;Guide&gt;")
	assert.Contains(t, doc, "<h1>Findings</h1>")
	assert.Contains(t, doc, "<em>emphasis</em>")
	assert.Contains(t, doc, "<table>")
	assert.Contains(t, doc, "font-size: 11pt")
	assert.Contains(t, doc, "#1a1a2e")
	assert.NotContains(t, doc, "report-image")
}

func TestBuildHTML_StylingAndImage(t *testing.T) {
	r := NewPDFRenderer(t.TempDir(), "", research.PDFStylingOptions{})

	doc, err := r.buildHTML("body", "Title", "/tmp/img.png", research.PDFStylingOptions{
		FontSize:     14,
		PrimaryColor: "#224466",
	})
	require.NoError(t, err)
	assert.Contains(t, doc, "font-size: 14pt")
	assert.Contains(t, doc, "#224466")
	assert.Contains(t, doc, `src="file:///tmp/img.png"`)
}
