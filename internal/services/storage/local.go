package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const localURLPrefix = "/uploads/"

// LocalBackend stores objects as files below a root directory.
type LocalBackend struct {
	root string
}

func NewLocalBackend(root string) (*LocalBackend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalBackend{root: root}, nil
}

func (b *LocalBackend) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	fullPath, err := b.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return localURLPrefix + path.Clean(key), nil
}

func (b *LocalBackend) Get(ctx context.Context, key string) ([]byte, error) {
	fullPath, err := b.resolve(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (b *LocalBackend) Delete(ctx context.Context, key string) error {
	fullPath, err := b.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (b *LocalBackend) Health(ctx context.Context) string {
	info, err := os.Stat(b.root)
	if err != nil {
		return "unhealthy: " + err.Error()
	}
	if !info.IsDir() {
		return "unhealthy: upload path is not a directory"
	}
	return "healthy"
}

// resolve maps key onto a path inside root, rejecting keys that escape it.
func (b *LocalBackend) resolve(key string) (string, error) {
	clean := path.Clean("/" + strings.TrimPrefix(key, localURLPrefix))
	if clean == "/" {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(b.root, filepath.FromSlash(clean)), nil
}
