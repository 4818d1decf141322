// Package render turns pipeline outputs into files on disk: generated
// images resized for embedding, and markdown reports printed to PDF
// through headless Chrome.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // decode support for webp responses

	"github.com/fyrsmithlabs/researchd/internal/research"
)

const defaultJPEGQuality = 90

// ImageStore persists generated images under a single output directory,
// resizing them for PDF embedding when requested.
type ImageStore struct {
	outputDir string
}

// NewImageStore builds a store rooted at outputDir. The directory is
// created on first save.
func NewImageStore(outputDir string) *ImageStore {
	return &ImageStore{outputDir: outputDir}
}

// Save writes the image to a timestamped file and returns its path and
// MIME type. A positive ResizeWidth scales the image proportionally before
// saving; webp output skips resizing since re-encoding it is unsupported.
func (s *ImageStore) Save(data []byte, opts research.ImageStylingOptions) (string, string, error) {
	format := opts.OutputFormat
	if format == "" {
		format = "png"
	}

	if opts.ResizeWidth > 0 && format != "webp" {
		resized, err := resizeToWidth(data, opts.ResizeWidth, format, opts.OutputCompression)
		if err != nil {
			return "", "", fmt.Errorf("resize image: %w", err)
		}
		data = resized
	}

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	now := time.Now()
	name := fmt.Sprintf("generated_image_%s_%06d.%s",
		now.Format("20060102_150405"), now.Nanosecond()/1000, format)
	path := filepath.Join(s.outputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("write image: %w", err)
	}
	return path, "image/" + format, nil
}

// resizeToWidth scales the image to the given width, keeping the aspect
// ratio, and re-encodes it in the requested format.
func resizeToWidth(data []byte, width int, format string, compression int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("decode: empty image")
	}
	height := int(float64(width) * float64(bounds.Dy()) / float64(bounds.Dx()))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		quality := compression
		if quality <= 0 || quality > 100 {
			quality = defaultJPEGQuality
		}
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		if err := png.Encode(&buf, dst); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	}
	return buf.Bytes(), nil
}
