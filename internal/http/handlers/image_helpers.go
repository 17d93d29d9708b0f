package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/photo-transform/internal/models"
	"github.com/phambaophuc/photo-transform/internal/services/photo"
	"github.com/phambaophuc/photo-transform/internal/services/processor"
	"github.com/phambaophuc/photo-transform/internal/services/storage"
	"github.com/phambaophuc/photo-transform/pkg/utils"
	"go.uber.org/zap"
)

var (
	errNoFile          = errors.New("no image file provided")
	errUnsupportedType = errors.New("unsupported image type")
)

// === FILE OPERATIONS ===

func (h *ImageHandler) readUploadedFile(c *gin.Context, paramKey string) ([]byte, *multipart.FileHeader, error) {
	header, err := c.FormFile(paramKey)
	if err != nil {
		return nil, nil, errNoFile
	}

	data, err := h.readFileHeader(header)
	if err != nil {
		return nil, nil, err
	}
	return data, header, nil
}

func (h *ImageHandler) readUploadedFiles(c *gin.Context, paramKey string) ([]models.UploadFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("failed to parse form data: %w", err)
	}

	headers := form.File[paramKey]
	if len(headers) == 0 {
		return nil, errNoFile
	}

	files := make([]models.UploadFile, 0, len(headers))
	for _, header := range headers {
		data, err := h.readFileHeader(header)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", header.Filename, err)
		}

		files = append(files, models.UploadFile{
			Filename:    header.Filename,
			ContentType: http.DetectContentType(data),
			Data:        data,
		})
	}

	return files, nil
}

func (h *ImageHandler) readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	maxSize := h.config.Storage.MaxFileSize
	if header.Size > maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds maximum allowed size %d",
			processor.ErrFileTooLarge, header.Size, maxSize)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: exceeds maximum allowed size %d", processor.ErrFileTooLarge, maxSize)
	}

	if len(data) == 0 {
		return nil, photo.ErrEmptyFile
	}

	if !h.isAllowedType(http.DetectContentType(data)) {
		return nil, errUnsupportedType
	}

	return data, nil
}

func (h *ImageHandler) isAllowedType(contentType string) bool {
	for _, allowed := range h.config.Storage.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

// === RESPONSE HANDLING ===

func (h *ImageHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

// respondServiceError maps service errors onto HTTP statuses. Unexpected
// errors are logged and reported with message only.
func (h *ImageHandler) respondServiceError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, errNoFile):
		h.respondError(c, http.StatusBadRequest, "No image file provided")
	case errors.Is(err, photo.ErrEmptyFile):
		h.respondError(c, http.StatusBadRequest, "Empty image file")
	case errors.Is(err, errUnsupportedType):
		h.respondError(c, http.StatusUnsupportedMediaType, "Unsupported image type")
	case errors.Is(err, processor.ErrFileTooLarge):
		h.respondError(c, http.StatusRequestEntityTooLarge, err.Error())
	case processor.IsDecodeError(err):
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("Invalid image: %v", err))
	case errors.Is(err, storage.ErrNotFound):
		h.respondError(c, http.StatusNotFound, "Not found")
	default:
		_ = c.Error(err)
		h.logger.Error(message, zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, message)
	}
}

func contentDisposition(disposition, filename string) string {
	return mime.FormatMediaType(disposition, map[string]string{"filename": filename})
}

// === UTILITY METHODS ===

func (h *ImageHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			return "unhealthy"
		}
	}
	return "healthy"
}

func (h *ImageHandler) buildBatchResponse(ctx context.Context, images []models.BatchImage, files []models.UploadFile) models.BatchResponse {
	response := models.BatchResponse{
		Images: make([]models.ImageResponse, len(images)),
	}

	var uploads []models.UploadFile
	var uploadIndex []int

	for i, img := range images {
		response.Images[i] = models.ImageResponse{
			Filename:    files[i].Filename,
			Width:       img.Width,
			Height:      img.Height,
			FileSize:    img.FileSize,
			ProcessedAt: time.Now(),
			Error:       img.Error,
		}

		if img.Error != "" {
			continue
		}

		filename := utils.ReplaceExtension(utils.SanitizeFilename(files[i].Filename), img.Format)
		response.Images[i].Filename = filename
		uploads = append(uploads, models.UploadFile{
			Filename:    filename,
			ContentType: processor.ContentType(img.Format),
			Data:        img.Data,
		})
		uploadIndex = append(uploadIndex, i)
	}

	results, err := h.storage.UploadMultiple(ctx, uploads)
	if err != nil {
		h.logger.Warn("Batch upload incomplete", zap.Error(err))
	}

	for j, result := range results {
		i := uploadIndex[j]
		if result.Err != nil {
			response.Images[i].Error = "failed to store image"
			continue
		}
		response.Images[i].URL = result.URL
	}

	for _, img := range response.Images {
		if img.Error != "" {
			response.Failed++
		}
	}

	return response
}
