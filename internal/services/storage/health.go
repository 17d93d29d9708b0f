package storage

import (
	"context"
	"errors"
)

// HealthCheck reports the status of the backend and the cache.
func (s *StorageService) HealthCheck(ctx context.Context) map[string]string {
	return map[string]string{
		"storage": s.backend.Health(ctx),
		"cache":   s.cache.Health(ctx),
	}
}

type statsProvider interface {
	Stats(ctx context.Context) (map[string]interface{}, error)
}

// GetCacheStats returns cache statistics when the cache exposes them.
func (s *StorageService) GetCacheStats(ctx context.Context) (map[string]interface{}, error) {
	provider, ok := s.cache.(statsProvider)
	if !ok {
		return nil, errors.New("cache statistics not available")
	}
	return provider.Stats(ctx)
}

// Close releases the cache connection when the cache holds one.
func (s *StorageService) Close() error {
	if closer, ok := s.cache.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
