package processor

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

var boxKernel = [9]float64{
	1.0 / 9, 1.0 / 9, 1.0 / 9,
	1.0 / 9, 1.0 / 9, 1.0 / 9,
	1.0 / 9, 1.0 / 9, 1.0 / 9,
}

// Sepia remaps every pixel through the fixed sepia color matrix.
// Alpha is kept as is.
func Sepia(img image.Image) *image.NRGBA {
	return imaging.AdjustFunc(img, sepiaTone)
}

func sepiaTone(c color.NRGBA) color.NRGBA {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)

	return color.NRGBA{
		R: sepiaChannel(0.393*r + 0.769*g + 0.189*b),
		G: sepiaChannel(0.349*r + 0.686*g + 0.168*b),
		B: sepiaChannel(0.272*r + 0.534*g + 0.131*b),
		A: c.A,
	}
}

// sepiaChannel truncates toward zero and caps at 255. Coefficients are
// non-negative so the lower bound never applies.
func sepiaChannel(v float64) uint8 {
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// Blur applies a uniform 3x3 box convolution. Neighbors outside the image
// are replaced by the nearest edge pixel, so border pixels are filtered too.
func Blur(img image.Image) *image.NRGBA {
	return imaging.Convolve3x3(img, boxKernel, nil)
}

// Flatten composites img over an opaque black canvas of the same size.
func Flatten(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	canvas := imaging.New(bounds.Dx(), bounds.Dy(), color.Black)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}
