package config_test

import (
	"testing"
	"time"

	"github.com/phambaophuc/photo-transform/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORAGE_BACKEND", "MAX_FILE_SIZE", "CACHE_DURATION", "REDIS_ADDR", "DEFAULT_QUALITY", "CORS_ALLOWED_ORIGINS", "MEMORY_CACHE_SIZE"} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, config.BackendLocal, cfg.Storage.Backend)
	assert.Equal(t, int64(10*1024*1024), cfg.Storage.MaxFileSize)
	assert.Equal(t, 24*time.Hour, cfg.Storage.CacheDuration)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.Equal(t, 1000, cfg.Storage.MemoryCacheSize)
	assert.Equal(t, 85, cfg.Processor.DefaultQuality)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "Supabase")
	t.Setenv("MAX_FILE_SIZE", "2000000")
	t.Setenv("CACHE_DURATION", "90m")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("MEMORY_CACHE_SIZE", "250")
	t.Setenv("QUEUE_WORKERS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, config.BackendSupabase, cfg.Storage.Backend)
	assert.Equal(t, int64(2000000), cfg.Storage.MaxFileSize)
	assert.Equal(t, 90*time.Minute, cfg.Storage.CacheDuration)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 250, cfg.Storage.MemoryCacheSize)
	assert.Equal(t, 2, cfg.RabbitMQ.Workers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}
