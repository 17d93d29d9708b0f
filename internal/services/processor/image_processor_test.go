package processor_test

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/phambaophuc/photo-transform/internal/models"
	"github.com/phambaophuc/photo-transform/internal/services/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformEmptyRequestDefaultsToJPEG(t *testing.T) {
	raw := encodePNG(t, solidImage(40, 30, color.NRGBA{10, 120, 200, 255}))

	out, format, err := processor.Transform(raw, models.TransformRequest{})
	require.NoError(t, err)
	assert.Equal(t, "jpg", format)

	img, decodedFormat := decode(t, out)
	assert.Equal(t, "jpeg", decodedFormat)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())
}

func TestTransformResize(t *testing.T) {
	raw := encodePNG(t, solidImage(200, 100, color.NRGBA{90, 90, 90, 255}))

	tests := []struct {
		name           string
		req            models.TransformRequest
		expectedWidth  int
		expectedHeight int
	}{
		{"width only keeps aspect ratio", models.TransformRequest{Width: 100, Format: "png"}, 100, 50},
		{"height only keeps aspect ratio", models.TransformRequest{Height: 25, Format: "png"}, 50, 25},
		{"width rounds to nearest", models.TransformRequest{Width: 33, Format: "png"}, 33, 17},
		{"both stretch", models.TransformRequest{Width: 30, Height: 90, Format: "png"}, 30, 90},
		{"neither keeps size", models.TransformRequest{Format: "png"}, 200, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := processor.Transform(raw, tt.req)
			require.NoError(t, err)

			width, height, err := processor.Dimensions(out)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedWidth, width)
			assert.Equal(t, tt.expectedHeight, height)
		})
	}
}

func TestTransformFormats(t *testing.T) {
	raw := encodePNG(t, solidImage(16, 8, color.NRGBA{200, 40, 40, 255}))

	tests := []struct {
		format         string
		expectedFormat string
		decodedFormat  string
	}{
		{"png", "png", "png"},
		{"PNG", "png", "png"},
		{"bmp", "bmp", "bmp"},
		{"jpeg", "jpeg", "jpeg"},
		{"jpg", "jpg", "jpeg"},
		{"gif", "jpg", "jpeg"},
		{"", "jpg", "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, format, err := processor.Transform(raw, models.TransformRequest{Format: tt.format})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedFormat, format)

			_, decodedFormat := decode(t, out)
			assert.Equal(t, tt.decodedFormat, decodedFormat)
		})
	}
}

func TestTransformUnknownFormatMatchesJPG(t *testing.T) {
	raw := encodePNG(t, splitImage(32, 32))

	gif, _, err := processor.Transform(raw, models.TransformRequest{Format: "gif"})
	require.NoError(t, err)

	jpg, _, err := processor.Transform(raw, models.TransformRequest{Format: "jpg"})
	require.NoError(t, err)

	assert.Equal(t, jpg, gif)
}

func TestTransformAlphaToJPEG(t *testing.T) {
	raw := encodePNG(t, solidImage(10, 10, color.NRGBA{255, 0, 0, 0}))

	out, _, err := processor.Transform(raw, models.TransformRequest{Format: "jpg"})
	require.NoError(t, err)

	img, format := decode(t, out)
	assert.Equal(t, "jpeg", format)
	assert.True(t, img.(interface{ Opaque() bool }).Opaque())

	// Fully transparent pixels end up on the black canvas.
	c := nrgbaAt(img, 5, 5)
	assert.LessOrEqual(t, c.R, uint8(8))
	assert.Equal(t, uint8(255), c.A)
}

func TestTransformResizeBeforeSepia(t *testing.T) {
	raw := encodePNG(t, splitImage(200, 100))
	req := models.TransformRequest{Width: 100, Sepia: true, Format: "png"}

	out, _, err := processor.Transform(raw, req)
	require.NoError(t, err)

	img, _ := decode(t, out)
	require.Equal(t, 100, img.Bounds().Dx())
	require.Equal(t, 50, img.Bounds().Dy())

	src, _, err := processor.Decode(raw)
	require.NoError(t, err)

	resizeThenSepia := processor.Sepia(processor.Resize(src, 100, 0))
	sepiaThenResize := processor.Resize(processor.Sepia(src), 100, 0)

	differs := false
	for x := 0; x < 100; x++ {
		expected := nrgbaAt(resizeThenSepia, x, 25)
		assert.Equal(t, expected, nrgbaAt(img, x, 25), "pixel %d", x)

		if expected != nrgbaAt(sepiaThenResize, x, 25) {
			differs = true
		}
	}

	// The anti-aliased edge must make the two orders distinguishable.
	assert.True(t, differs)
}

func TestTransformDecodeError(t *testing.T) {
	_, _, err := processor.Transform([]byte("definitely not an image"), models.TransformRequest{})
	require.Error(t, err)

	var decodeErr *processor.DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.True(t, processor.IsDecodeError(err))

	_, _, err = processor.Transform(nil, models.TransformRequest{})
	assert.True(t, processor.IsDecodeError(err))
}

func TestDimensions(t *testing.T) {
	raw := encodePNG(t, solidImage(100, 50, color.NRGBA{1, 2, 3, 255}))

	width, height, err := processor.Dimensions(raw)
	require.NoError(t, err)
	assert.Equal(t, 100, width)
	assert.Equal(t, 50, height)

	_, _, err = processor.Dimensions([]byte{0x00, 0x01})
	assert.True(t, processor.IsDecodeError(err))
}

func TestApplyDoesNotModifySource(t *testing.T) {
	src := solidImage(4, 4, color.NRGBA{100, 150, 200, 255})
	before := append([]uint8(nil), src.Pix...)

	out := processor.Apply(src, models.TransformRequest{Width: 2, Sepia: true, Blur: true})

	assert.Equal(t, before, src.Pix)
	assert.Equal(t, image.Rect(0, 0, 2, 2), out.Bounds())
}

func TestImageProcessor(t *testing.T) {
	p := processor.NewImageProcessor(0)
	raw := encodePNG(t, solidImage(20, 10, color.NRGBA{50, 60, 70, 255}))

	t.Run("image info", func(t *testing.T) {
		width, height, format, err := p.ImageInfo(raw)
		require.NoError(t, err)
		assert.Equal(t, 20, width)
		assert.Equal(t, 10, height)
		assert.Equal(t, "png", format)
	})

	t.Run("validate", func(t *testing.T) {
		assert.NoError(t, p.ValidateImage(raw, 0))
		assert.NoError(t, p.ValidateImage(raw, int64(len(raw))))
		assert.ErrorIs(t, p.ValidateImage(raw, int64(len(raw)-1)), processor.ErrFileTooLarge)
		assert.True(t, processor.IsDecodeError(p.ValidateImage([]byte("nope"), 0)))

		// Header intact, tail of the image data cut off.
		truncated := raw[:len(raw)-16]
		_, _, err := processor.Dimensions(truncated)
		require.NoError(t, err)
		assert.True(t, processor.IsDecodeError(p.ValidateImage(truncated, 0)))
	})

	t.Run("batch keeps order", func(t *testing.T) {
		inputs := [][]byte{raw, []byte("broken"), raw}

		results := p.BatchTransform(inputs, models.TransformRequest{Width: 10, Format: "png"})
		require.Len(t, results, 3)

		assert.Empty(t, results[0].Error)
		assert.Equal(t, 10, results[0].Width)
		assert.Equal(t, 5, results[0].Height)
		assert.Equal(t, "png", results[0].Format)
		assert.Equal(t, int64(len(results[0].Data)), results[0].FileSize)

		assert.NotEmpty(t, results[1].Error)
		assert.Nil(t, results[1].Data)

		assert.Empty(t, results[2].Error)
	})

	t.Run("batch empty", func(t *testing.T) {
		assert.Empty(t, p.BatchTransform(nil, models.TransformRequest{}))
	})
}
