package processor

import (
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/photo-transform/internal/models"
)

const DefaultQuality = 85

// NormalizeFormat maps a requested output format onto a supported one.
// Unrecognized names fall back to jpg.
func NormalizeFormat(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case models.FormatJPG, models.FormatJPEG, models.FormatPNG, models.FormatBMP:
		return f
	default:
		return models.FormatJPG
	}
}

// ContentType returns the MIME type for a normalized output format.
func ContentType(format string) string {
	switch NormalizeFormat(format) {
	case models.FormatPNG:
		return "image/png"
	case models.FormatBMP:
		return "image/bmp"
	default:
		return "image/jpeg"
	}
}

// Quality clamps a requested JPEG quality, using DefaultQuality when unset.
func Quality(quality int) int {
	if quality <= 0 {
		return DefaultQuality
	}
	return min(100, quality)
}

// Encode writes img to w in the given format. JPEG output is flattened onto
// an opaque canvas first since JPEG has no alpha channel.
func Encode(w io.Writer, img image.Image, format string, quality int) error {
	format = NormalizeFormat(format)

	var err error
	switch format {
	case models.FormatPNG:
		err = imaging.Encode(w, img, imaging.PNG)
	case models.FormatBMP:
		err = imaging.Encode(w, img, imaging.BMP)
	default:
		err = imaging.Encode(w, Flatten(img), imaging.JPEG, imaging.JPEGQuality(Quality(quality)))
	}

	if err != nil {
		return &EncodeError{Format: format, Err: err}
	}
	return nil
}
