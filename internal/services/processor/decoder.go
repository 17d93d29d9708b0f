package processor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode turns raw encoded bytes into a raster and reports the source format.
func Decode(raw []byte) (image.Image, string, error) {
	if len(raw) == 0 {
		return nil, "", &DecodeError{Err: errEmptyImage}
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", &DecodeError{Err: err}
	}

	bounds := img.Bounds()
	if bounds.Dx() < 1 || bounds.Dy() < 1 {
		return nil, "", &DecodeError{Err: fmt.Errorf("invalid image size %dx%d", bounds.Dx(), bounds.Dy())}
	}

	return img, format, nil
}

// Dimensions returns the natural width and height of an encoded image
// without decoding its pixels.
func Dimensions(raw []byte) (int, int, error) {
	if len(raw) == 0 {
		return 0, 0, &DecodeError{Err: errEmptyImage}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return 0, 0, &DecodeError{Err: err}
	}

	if cfg.Width < 1 || cfg.Height < 1 {
		return 0, 0, &DecodeError{Err: fmt.Errorf("invalid image size %dx%d", cfg.Width, cfg.Height)}
	}

	return cfg.Width, cfg.Height, nil
}

// DetectFormat returns the registered format name of an encoded image.
func DetectFormat(raw []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", &DecodeError{Err: err}
	}
	return format, nil
}
