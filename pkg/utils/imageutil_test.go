package utils_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phambaophuc/photo-transform/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestDownloadImage(t *testing.T) {
	img := pngBytes(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Write(img)
		case "/text":
			w.Write([]byte("hello, world"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		data, contentType, err := utils.DownloadImage(ctx, server.URL+"/ok.png", 1<<20)
		require.NoError(t, err)
		assert.Equal(t, img, data)
		assert.Equal(t, "image/png", contentType)
	})

	t.Run("not an image", func(t *testing.T) {
		_, _, err := utils.DownloadImage(ctx, server.URL+"/text", 1<<20)
		assert.ErrorContains(t, err, "invalid content type")
	})

	t.Run("too large", func(t *testing.T) {
		_, _, err := utils.DownloadImage(ctx, server.URL+"/ok.png", 10)
		assert.ErrorContains(t, err, "maximum size")
	})

	t.Run("status", func(t *testing.T) {
		_, _, err := utils.DownloadImage(ctx, server.URL+"/missing", 1<<20)
		assert.ErrorContains(t, err, "status 404")
	})
}

func TestIsValidImageType(t *testing.T) {
	assert.True(t, utils.IsValidImageType("image/png"))
	assert.True(t, utils.IsValidImageType("IMAGE/BMP"))
	assert.False(t, utils.IsValidImageType("text/plain; charset=utf-8"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "cat.png", utils.SanitizeFilename("cat.png"))
	assert.Equal(t, "passwd", utils.SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "evil.jpg", utils.SanitizeFilename(`C:\tmp\evil.jpg`))
	assert.Equal(t, "my_holiday_photo.jpg", utils.SanitizeFilename("my holiday photo.jpg"))
	assert.Equal(t, "image", utils.SanitizeFilename(""))
	assert.Equal(t, "image", utils.SanitizeFilename(".."))
}

func TestReplaceExtension(t *testing.T) {
	assert.Equal(t, "cat.jpg", utils.ReplaceExtension("cat.png", "jpg"))
	assert.Equal(t, "archive.tar.bmp", utils.ReplaceExtension("archive.tar.gz", "bmp"))
	assert.Equal(t, "noext.png", utils.ReplaceExtension("noext", "png"))
	assert.Equal(t, "image.png", utils.ReplaceExtension("", "png"))
}

func TestPhotoKey(t *testing.T) {
	key := utils.PhotoKey("alice", "cat.png")
	assert.True(t, strings.HasPrefix(key, "alice/cat_"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.NotEqual(t, key, utils.PhotoKey("alice", "cat.png"))

	assert.True(t, strings.HasPrefix(utils.PhotoKey("", "a.jpg"), "anonymous/"))
}

func TestGenerateFilename(t *testing.T) {
	assert.True(t, strings.HasPrefix(utils.GenerateFilename("job1", ""), "processed_job1_"))
	assert.True(t, strings.HasSuffix(utils.GenerateFilename("job1", ""), ".jpg"))
	assert.True(t, strings.HasSuffix(utils.GenerateFilename("job1", "png"), ".png"))
}
