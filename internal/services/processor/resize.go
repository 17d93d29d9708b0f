package processor

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// TargetSize resolves the requested box against the source size. A missing
// dimension is derived from the source aspect ratio, rounded to nearest.
func TargetSize(srcWidth, srcHeight, width, height int) (int, int) {
	if width <= 0 && height <= 0 {
		return srcWidth, srcHeight
	}

	if width <= 0 {
		width = int(math.Round(float64(srcWidth) * float64(height) / float64(srcHeight)))
	}
	if height <= 0 {
		height = int(math.Round(float64(srcHeight) * float64(width) / float64(srcWidth)))
	}

	return max(1, width), max(1, height)
}

// Resize stretches img to the resolved target size with a bilinear filter.
// With neither dimension set the raster is returned unchanged.
func Resize(img image.Image, width, height int) image.Image {
	if width <= 0 && height <= 0 {
		return img
	}

	bounds := img.Bounds()
	w, h := TargetSize(bounds.Dx(), bounds.Dy(), width, height)
	return imaging.Resize(img, w, h, imaging.Linear)
}
