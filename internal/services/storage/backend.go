package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("object not found")

// Backend persists photo bytes under slash-separated keys.
type Backend interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Health(ctx context.Context) string
}
