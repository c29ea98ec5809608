package export

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
)

// DefaultFigureFormat is the image format used when none is given.
const DefaultFigureFormat = "pdf"

// SupportedFormats lists the image formats a figure may be stored as.
var SupportedFormats = []string{"pdf", "png", "jpg", "jpeg", "svg", "eps"}

// Image is a renderable image handle. Encode writes the image to w in the
// named format, or fails if it cannot produce that format.
type Image interface {
	Encode(w io.Writer, format string) error
}

// Raster adapts a standard library image. It can be encoded as png or jpeg.
type Raster struct {
	Image image.Image

	// Quality is the jpeg quality (1-100). Zero uses the jpeg default.
	Quality int
}

// Encode implements Image.
func (r Raster) Encode(w io.Writer, format string) error {
	if r.Image == nil {
		return fmt.Errorf("raster has no image")
	}
	switch normalizeFormat(format) {
	case "png":
		return png.Encode(w, r.Image)
	case "jpg":
		opts := &jpeg.Options{Quality: jpeg.DefaultQuality}
		if r.Quality > 0 {
			opts.Quality = r.Quality
		}
		return jpeg.Encode(w, r.Image, opts)
	default:
		return fmt.Errorf("raster images cannot be encoded as %s", format)
	}
}

// Encoded is an image that was rendered elsewhere, for example a PDF written
// by a plotting library. It can only be encoded in its own format.
type Encoded struct {
	Format string
	Data   []byte
}

// Encode implements Image.
func (e Encoded) Encode(w io.Writer, format string) error {
	if normalizeFormat(e.Format) != normalizeFormat(format) {
		return fmt.Errorf("image is %s, cannot convert to %s", e.Format, format)
	}
	_, err := w.Write(e.Data)
	return err
}

func normalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	if f == "jpeg" {
		return "jpg"
	}
	return f
}

func isSupportedFormat(format string) bool {
	for _, f := range SupportedFormats {
		if f == strings.ToLower(format) {
			return true
		}
	}
	return false
}
