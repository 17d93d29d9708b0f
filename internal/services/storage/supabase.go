package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/phambaophuc/photo-transform/internal/config"
	storage_go "github.com/supabase-community/storage-go"
)

type SupabaseBackend struct {
	sbClient *storage_go.Client
	bucket   string
}

func NewSupabaseBackend(cfg config.SupabaseConfig) *SupabaseBackend {
	return &SupabaseBackend{
		sbClient: storage_go.NewClient(cfg.URL+"/storage/v1", cfg.KEY, nil),
		bucket:   cfg.BUCKET,
	}
}

// Put uploads data to the bucket, overwriting any object under key.
func (b *SupabaseBackend) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	upsert := true
	_, err := b.sbClient.UploadFile(b.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to supabase: %w", err)
	}

	publicURL := b.sbClient.GetPublicUrl(b.bucket, key)
	return publicURL.SignedURL, nil
}

func (b *SupabaseBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.sbClient.DownloadFile(b.bucket, key)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to download from supabase: %w", err)
	}
	return data, nil
}

func (b *SupabaseBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.sbClient.RemoveFile(b.bucket, []string{key}); err != nil {
		return fmt.Errorf("failed to delete from supabase: %w", err)
	}
	return nil
}

func (b *SupabaseBackend) Health(ctx context.Context) string {
	if _, err := b.sbClient.ListFiles(b.bucket, "", storage_go.FileSearchOptions{}); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}

func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "404")
}
