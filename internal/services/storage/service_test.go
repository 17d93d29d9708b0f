package storage_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phambaophuc/photo-transform/internal/models"
	"github.com/phambaophuc/photo-transform/internal/services/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) *storage.StorageService {
	t.Helper()

	backend, err := storage.NewLocalBackend(t.TempDir())
	require.NoError(t, err)

	return storage.NewStorageService(backend, storage.NewMemoryCache(0, 0), zap.NewNop())
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewMemoryCache(0, 0)

	require.NoError(t, cache.Set(ctx, "foo", []byte("bar")))

	data, err := cache.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, []byte("bar"), data)

	_, err = cache.Get(ctx, "notfound")
	assert.ErrorIs(t, err, storage.ErrCacheMiss)
}

func TestMemoryCacheEviction(t *testing.T) {
	ctx := context.Background()

	t.Run("least recently used goes first", func(t *testing.T) {
		cache := storage.NewMemoryCache(2, 0)

		require.NoError(t, cache.Set(ctx, "a", []byte("1")))
		require.NoError(t, cache.Set(ctx, "b", []byte("2")))
		_, err := cache.Get(ctx, "a")
		require.NoError(t, err)
		require.NoError(t, cache.Set(ctx, "c", []byte("3")))

		_, err = cache.Get(ctx, "b")
		assert.ErrorIs(t, err, storage.ErrCacheMiss)
		for _, key := range []string{"a", "c"} {
			_, err := cache.Get(ctx, key)
			assert.NoError(t, err, key)
		}

		stats, err := cache.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats["db_keys"])
		assert.Equal(t, 2, stats["capacity"])
	})

	t.Run("entries expire after ttl", func(t *testing.T) {
		cache := storage.NewMemoryCache(10, 20*time.Millisecond)
		require.NoError(t, cache.Set(ctx, "a", []byte("1")))

		assert.Eventually(t, func() bool {
			_, err := cache.Get(ctx, "a")
			return errors.Is(err, storage.ErrCacheMiss)
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("delete by prefix", func(t *testing.T) {
		cache := storage.NewMemoryCache(0, 0)
		for _, key := range []string{"img_cache:a:1", "img_cache:a:2", "img_cache:ab:1"} {
			require.NoError(t, cache.Set(ctx, key, []byte("x")))
		}

		require.NoError(t, cache.DeletePrefix(ctx, "img_cache:a:"))

		for _, key := range []string{"img_cache:a:1", "img_cache:a:2"} {
			_, err := cache.Get(ctx, key)
			assert.ErrorIs(t, err, storage.ErrCacheMiss, key)
		}
		_, err := cache.Get(ctx, "img_cache:ab:1")
		assert.NoError(t, err)
	})
}

func TestGenerateCacheKey(t *testing.T) {
	s := newService(t)
	req := models.TransformRequest{Width: 100, Format: "png", Sepia: true}

	key := s.GenerateCacheKey("alice/cat.png", req)
	assert.True(t, strings.HasPrefix(key, storage.CacheKeyPrefix+"alice/cat.png:"))
	assert.Equal(t, key, s.GenerateCacheKey("alice/cat.png", req))

	variants := []models.TransformRequest{
		{Width: 101, Format: "png", Sepia: true},
		{Width: 100, Height: 1, Format: "png", Sepia: true},
		{Width: 100, Format: "jpg", Sepia: true},
		{Width: 100, Format: "png"},
		{Width: 100, Format: "png", Sepia: true, Blur: true},
		{Width: 100, Format: "png", Sepia: true, Quality: 50},
	}
	for _, variant := range variants {
		assert.NotEqual(t, key, s.GenerateCacheKey("alice/cat.png", variant), "%+v", variant)
	}

	assert.NotEqual(t, key, s.GenerateCacheKey("alice/dog.png", req))
	assert.Equal(t, key, s.GenerateCacheKey("alice/cat.png", models.TransformRequest{Width: 100, Format: "PNG", Sepia: true}))

	result := s.GenerateResultKey("alice/cat.png", req)
	assert.True(t, strings.HasPrefix(result, storage.ResultKeyPrefix+"alice/cat.png:"))
	assert.Equal(t, strings.TrimPrefix(key, storage.CacheKeyPrefix), strings.TrimPrefix(result, storage.ResultKeyPrefix))
}

func TestInvalidateCache(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	req := models.TransformRequest{Sepia: true}

	catKey := s.GenerateCacheKey("alice/cat.png", req)
	catResult := s.GenerateResultKey("alice/cat.png", req)
	dogKey := s.GenerateCacheKey("alice/dog.png", req)
	for _, key := range []string{catKey, catResult, dogKey} {
		require.NoError(t, s.SetCache(ctx, key, []byte("x")))
	}

	require.NoError(t, s.InvalidateCache(ctx, "alice/cat.png"))

	for _, key := range []string{catKey, catResult} {
		data, err := s.GetFromCache(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, data, key)
	}
	data, err := s.GetFromCache(ctx, dogKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}

func TestGetOrRender(t *testing.T) {
	ctx := context.Background()

	t.Run("renders once then serves cache", func(t *testing.T) {
		s := newService(t)
		var calls int32

		render := func() ([]byte, error) {
			atomic.AddInt32(&calls, 1)
			return []byte("rendered"), nil
		}

		for i := 0; i < 3; i++ {
			data, err := s.GetOrRender(ctx, "k", render)
			require.NoError(t, err)
			assert.Equal(t, []byte("rendered"), data)
		}
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("concurrent callers", func(t *testing.T) {
		s := newService(t)
		var calls, started int32
		entered := make(chan struct{})
		release := make(chan struct{})

		render := func() ([]byte, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				close(entered)
			}
			<-release
			return []byte("slow"), nil
		}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				atomic.AddInt32(&started, 1)
				data, err := s.GetOrRender(ctx, "shared", render)
				assert.NoError(t, err)
				assert.Equal(t, []byte("slow"), data)
			}()
		}

		require.Eventually(t, func() bool {
			return atomic.LoadInt32(&started) == 8
		}, time.Second, time.Millisecond)
		<-entered
		// Let the remaining callers reach the in-flight render.
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("errors are not cached", func(t *testing.T) {
		s := newService(t)
		boom := errors.New("boom")

		_, err := s.GetOrRender(ctx, "bad", func() ([]byte, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)

		data, err := s.GetFromCache(ctx, "bad")
		require.NoError(t, err)
		assert.Nil(t, data)
	})
}

func TestJobs(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	job := &models.ProcessingJob{ID: "abc", PhotoKey: "alice/cat.png", Status: models.StatusPending}
	require.NoError(t, s.SaveJob(ctx, job))

	loaded, err := s.GetJob(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "alice/cat.png", loaded.PhotoKey)
	assert.Equal(t, models.StatusPending, loaded.Status)

	_, err = s.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

type flakyBackend struct {
	storage.Backend
	mu    sync.Mutex
	fails map[string]bool
}

func (b *flakyBackend) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for name := range b.fails {
		if strings.Contains(key, name) {
			return "", errors.New("upload rejected")
		}
	}
	return b.Backend.Put(ctx, key, data, contentType)
}

func TestUploadMultiple(t *testing.T) {
	ctx := context.Background()

	local, err := storage.NewLocalBackend(t.TempDir())
	require.NoError(t, err)

	backend := &flakyBackend{Backend: local, fails: map[string]bool{"bad": true}}
	s := storage.NewStorageService(backend, storage.NewMemoryCache(0, 0), zap.NewNop())

	files := []models.UploadFile{
		{Filename: "one.png", ContentType: "image/png", Data: []byte("1")},
		{Filename: "bad.png", ContentType: "image/png", Data: []byte("2")},
		{Filename: "three.png", ContentType: "image/png", Data: []byte("3")},
	}

	results, err := s.UploadMultiple(ctx, files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload 1 files")
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.True(t, strings.HasPrefix(results[0].Key, "processed/one_"))
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)

	data, err := s.Download(ctx, results[2].Key)
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), data)
}

func TestHealthCheck(t *testing.T) {
	s := newService(t)

	status := s.HealthCheck(context.Background())
	assert.Equal(t, "healthy", status["storage"])
	assert.Equal(t, "healthy", status["cache"])

	stats, err := s.GetCacheStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats["db_keys"])
}
