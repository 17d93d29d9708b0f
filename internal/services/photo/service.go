package photo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/phambaophuc/photo-transform/internal/models"
	"github.com/phambaophuc/photo-transform/internal/services/processor"
	"github.com/phambaophuc/photo-transform/internal/services/storage"
	"github.com/phambaophuc/photo-transform/pkg/utils"
	"go.uber.org/zap"
)

var ErrEmptyFile = errors.New("empty file")

type UploadInput struct {
	Owner       string
	Filename    string
	ContentType string
	Data        []byte
	Description string
	Hashtags    string

	// Optional conversion applied before storing.
	Format string
	Width  int
	Height int
}

func (in UploadInput) wantsConversion() bool {
	return in.Format != "" || in.Width > 0 || in.Height > 0
}

// Service implements the upload and view paths around the transform routine.
type Service struct {
	processor   *processor.ImageProcessor
	storage     *storage.StorageService
	logger      *zap.Logger
	maxFileSize int64
	now         func() time.Time
}

func NewService(
	processor *processor.ImageProcessor,
	storage *storage.StorageService,
	logger *zap.Logger,
	maxFileSize int64,
) *Service {
	return &Service{
		processor:   processor,
		storage:     storage,
		logger:      logger,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
}

// Upload optionally converts the image, stores it and returns its metadata.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.Photo, error) {
	if len(in.Data) == 0 {
		return nil, ErrEmptyFile
	}

	if err := s.processor.ValidateImage(in.Data, s.maxFileSize); err != nil {
		return nil, err
	}

	data := in.Data
	filename := utils.SanitizeFilename(in.Filename)
	contentType := in.ContentType

	if in.wantsConversion() {
		converted, format, err := s.processor.Transform(data, models.TransformRequest{
			Width:  in.Width,
			Height: in.Height,
			Format: in.Format,
		})
		if err != nil {
			return nil, err
		}

		data = converted
		filename = utils.ReplaceExtension(filename, format)
		contentType = processor.ContentType(format)
	}

	if contentType == "" || !utils.IsValidImageType(contentType) {
		contentType = http.DetectContentType(data)
	}

	width, height, err := processor.Dimensions(data)
	if err != nil {
		return nil, err
	}

	key := utils.PhotoKey(in.Owner, filename)
	url, err := s.storage.Save(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store uploaded file: %w", err)
	}

	s.logger.Info("Photo uploaded",
		zap.String("key", key),
		zap.String("owner", in.Owner),
		zap.Int("size", len(data)),
		zap.Int("width", width),
		zap.Int("height", height))

	return &models.Photo{
		Key:              key,
		URL:              url,
		Owner:            in.Owner,
		Filename:         filename,
		OriginalFilename: in.Filename,
		ContentType:      contentType,
		Size:             int64(len(data)),
		Width:            width,
		Height:           height,
		Description:      in.Description,
		Hashtags:         in.Hashtags,
		UploadedAt:       s.now(),
	}, nil
}

// View returns the stored photo, transformed when req asks for any change.
// Without a requested format, or with format "original" plus other
// operations, transformed output is jpg.
func (s *Service) View(ctx context.Context, key string, req models.TransformRequest) ([]byte, string, error) {
	req = req.WithoutOriginalFormat()
	if req.IsEmpty() {
		data, err := s.storage.Download(ctx, key)
		if err != nil {
			return nil, "", err
		}
		return data, http.DetectContentType(data), nil
	}

	cacheKey := s.storage.GenerateCacheKey(key, req)
	data, err := s.storage.GetOrRender(ctx, cacheKey, func() ([]byte, error) {
		original, err := s.storage.Download(ctx, key)
		if err != nil {
			return nil, err
		}

		out, _, err := s.processor.Transform(original, req)
		return out, err
	})
	if err != nil {
		return nil, "", err
	}

	return data, processor.ContentType(req.Format), nil
}

// Dimensions reads the size of a stored photo.
func (s *Service) Dimensions(ctx context.Context, key string) (models.Dimensions, error) {
	data, err := s.storage.Download(ctx, key)
	if err != nil {
		return models.Dimensions{}, err
	}

	width, height, err := processor.Dimensions(data)
	if err != nil {
		return models.Dimensions{}, err
	}
	return models.Dimensions{Width: width, Height: height}, nil
}

func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.storage.Delete(ctx, key); err != nil {
		return err
	}

	if err := s.storage.InvalidateCache(ctx, key); err != nil {
		s.logger.Warn("Failed to drop cached derivatives", zap.String("key", key), zap.Error(err))
	}

	s.logger.Info("Photo deleted", zap.String("key", key))
	return nil
}
