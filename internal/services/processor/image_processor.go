package processor

import (
	"bytes"
	"image"

	"github.com/phambaophuc/photo-transform/internal/models"
)

const DefaultWorkers = 5

// Transform decodes raw, applies the requested operations in fixed order
// (resize, sepia, blur) and re-encodes the result. It returns the encoded
// bytes and the output format actually used.
func Transform(raw []byte, req models.TransformRequest) ([]byte, string, error) {
	img, _, err := Decode(raw)
	if err != nil {
		return nil, "", err
	}

	format := NormalizeFormat(req.Format)

	buffer := &bytes.Buffer{}
	if err := Encode(buffer, Apply(img, req), format, req.Quality); err != nil {
		return nil, "", err
	}

	return buffer.Bytes(), format, nil
}

// Apply runs the raster stages of the pipeline. Each stage returns a new
// raster; img is never modified.
func Apply(img image.Image, req models.TransformRequest) image.Image {
	result := img

	if req.HasResize() {
		result = Resize(result, req.Width, req.Height)
	}

	if req.Sepia {
		result = Sepia(result)
	}

	if req.Blur {
		result = Blur(result)
	}

	return result
}

// ImageProcessor carries the service-level defaults around the pure
// transform functions.
type ImageProcessor struct {
	quality int
	workers int
}

func NewImageProcessor(quality int) *ImageProcessor {
	return &ImageProcessor{
		quality: Quality(quality),
		workers: DefaultWorkers,
	}
}

// Transform applies req to raw, filling in the default JPEG quality.
func (p *ImageProcessor) Transform(raw []byte, req models.TransformRequest) ([]byte, string, error) {
	if req.Quality <= 0 {
		req.Quality = p.quality
	}
	return Transform(raw, req)
}

// ImageInfo returns the dimensions and source format of raw.
func (p *ImageProcessor) ImageInfo(raw []byte) (int, int, string, error) {
	width, height, err := Dimensions(raw)
	if err != nil {
		return 0, 0, "", err
	}

	format, err := DetectFormat(raw)
	if err != nil {
		return 0, 0, "", err
	}

	return width, height, format, nil
}
