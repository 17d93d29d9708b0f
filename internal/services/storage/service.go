package storage

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/phambaophuc/photo-transform/internal/config"
	"github.com/phambaophuc/photo-transform/internal/models"
	"github.com/phambaophuc/photo-transform/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	CacheKeyPrefix  = "img_cache:"
	ResultKeyPrefix = "job_result:"
	JobKeyPrefix    = "job:"
)

type StorageService struct {
	backend     Backend
	cache       Cache
	logger      *zap.Logger
	renderGroup singleflight.Group
}

func NewStorageService(backend Backend, cache Cache, logger *zap.Logger) *StorageService {
	return &StorageService{
		backend: backend,
		cache:   cache,
		logger:  logger,
	}
}

// New builds the storage service selected by cfg.
func New(cfg *config.Config, logger *zap.Logger) (*StorageService, error) {
	var backend Backend
	switch cfg.Storage.Backend {
	case config.BackendSupabase:
		if cfg.Supabase.URL == "" || cfg.Supabase.BUCKET == "" {
			return nil, errors.New("supabase backend requires SUPABASE_URL and SUPABASE_BUCKET")
		}
		backend = NewSupabaseBackend(cfg.Supabase)
	case config.BackendLocal, "":
		local, err := NewLocalBackend(cfg.Storage.UploadPath)
		if err != nil {
			return nil, err
		}
		backend = local
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	var cache Cache = NewMemoryCache(cfg.Storage.MemoryCacheSize, cfg.Storage.CacheDuration)
	if cfg.Redis.Addr != "" {
		cache = NewRedisCache(cfg.Redis, cfg.Storage.CacheDuration)
	}

	return NewStorageService(backend, cache, logger), nil
}

// Upload stores data under a freshly generated key derived from filename.
func (s *StorageService) Upload(ctx context.Context, data []byte, filename, contentType string) (string, string, error) {
	key := utils.GenerateStorageKey(filename)
	url, err := s.Save(ctx, key, data, contentType)
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

// Save stores data under key and returns its public URL.
func (s *StorageService) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return s.backend.Put(ctx, key, data, contentType)
}

func (s *StorageService) Download(ctx context.Context, key string) ([]byte, error) {
	return s.backend.Get(ctx, key)
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// GetFromCache returns nil data and no error on a cache miss.
func (s *StorageService) GetFromCache(ctx context.Context, cacheKey string) ([]byte, error) {
	data, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (s *StorageService) SetCache(ctx context.Context, cacheKey string, data []byte) error {
	return s.cache.Set(ctx, cacheKey, data)
}

// GetOrRender returns the cached value for cacheKey, or runs render once for
// all concurrent callers and caches its output. Cache failures are logged and
// never fail the request.
func (s *StorageService) GetOrRender(ctx context.Context, cacheKey string, render func() ([]byte, error)) ([]byte, error) {
	cached, err := s.GetFromCache(ctx, cacheKey)
	if err != nil {
		s.logger.Warn("Cache read failed", zap.String("cache_key", cacheKey), zap.Error(err))
	}
	if cached != nil {
		s.logger.Debug("Cache hit", zap.String("cache_key", cacheKey))
		return cached, nil
	}

	v, err, _ := s.renderGroup.Do(cacheKey, func() (interface{}, error) {
		// A caller that missed just before the previous flight finished lands here.
		if cached, _ := s.GetFromCache(ctx, cacheKey); cached != nil {
			return cached, nil
		}

		data, err := render()
		if err != nil {
			return nil, err
		}

		if err := s.SetCache(ctx, cacheKey, data); err != nil {
			s.logger.Warn("Failed to cache data", zap.String("cache_key", cacheKey), zap.Error(err))
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	data, _ := v.([]byte)
	return data, nil
}

// GenerateCacheKey derives a stable key for a derivative of source.
// Keys of one source share the prefix removed by InvalidateCache.
func (s *StorageService) GenerateCacheKey(source string, req models.TransformRequest) string {
	return CacheKeyPrefix + source + ":" + hashRequest(source, req)
}

// GenerateResultKey derives the key under which a job result for source is kept.
func (s *StorageService) GenerateResultKey(source string, req models.TransformRequest) string {
	return ResultKeyPrefix + source + ":" + hashRequest(source, req)
}

// InvalidateCache drops every cached derivative and job result of source.
func (s *StorageService) InvalidateCache(ctx context.Context, source string) error {
	for _, prefix := range []string{CacheKeyPrefix, ResultKeyPrefix} {
		if err := s.cache.DeletePrefix(ctx, prefix+source+":"); err != nil {
			return fmt.Errorf("failed to invalidate %s: %w", source, err)
		}
	}
	return nil
}

func hashRequest(source string, req models.TransformRequest) string {
	keyParts := []string{
		source,
		fmt.Sprintf("resize_%d_%d", req.Width, req.Height),
		fmt.Sprintf("format_%s_%d", strings.ToLower(req.Format), req.Quality),
		fmt.Sprintf("filters_%t_%t", req.Sepia, req.Blur),
	}

	hash := sha256.Sum256([]byte(strings.Join(keyParts, "|")))
	return fmt.Sprintf("%x", hash)
}

// SaveJob records the current state of job.
func (s *StorageService) SaveJob(ctx context.Context, job *models.ProcessingJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	return s.cache.Set(ctx, JobKeyPrefix+job.ID, data)
}

// GetJob loads a job recorded by SaveJob. It returns ErrNotFound for unknown ids.
func (s *StorageService) GetJob(ctx context.Context, id string) (*models.ProcessingJob, error) {
	data, err := s.cache.Get(ctx, JobKeyPrefix+id)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, fmt.Errorf("%w: job %s", ErrNotFound, id)
		}
		return nil, err
	}

	var job models.ProcessingJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}
