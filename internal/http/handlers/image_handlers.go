package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/photo-transform/internal/config"
	"github.com/phambaophuc/photo-transform/internal/models"
	"github.com/phambaophuc/photo-transform/internal/services/photo"
	"github.com/phambaophuc/photo-transform/internal/services/processor"
	"github.com/phambaophuc/photo-transform/internal/services/storage"
	"github.com/phambaophuc/photo-transform/pkg/utils"
	"go.uber.org/zap"
)

const (
	maxCacheAge    = 3600
	imageParamKey  = "image"
	imagesParamKey = "images"
)

// JobQueue is the broker side of the async transform path.
type JobQueue interface {
	PublishJob(ctx context.Context, job *models.ProcessingJob) error
	GetQueueStats() (*models.QueueStats, error)
	HealthCheck() string
}

type ImageHandler struct {
	processor *processor.ImageProcessor
	storage   *storage.StorageService
	photos    *photo.Service
	queue     JobQueue
	logger    *zap.Logger
	config    *config.Config
	startedAt time.Time
}

// NewImageHandler wires the handlers. queue may be nil when no broker is configured.
func NewImageHandler(
	processor *processor.ImageProcessor,
	storage *storage.StorageService,
	photos *photo.Service,
	queue JobQueue,
	logger *zap.Logger,
	config *config.Config,
) *ImageHandler {
	return &ImageHandler{
		processor: processor,
		storage:   storage,
		photos:    photos,
		queue:     queue,
		logger:    logger,
		config:    config,
		startedAt: time.Now(),
	}
}

// === MAIN API ENDPOINTS ===

// TransformImage applies the requested operations to an uploaded image and
// returns the encoded result.
func (h *ImageHandler) TransformImage(c *gin.Context) {
	raw, header, err := h.readUploadedFile(c, imageParamKey)
	if err != nil {
		h.respondServiceError(c, err, "Failed to read image")
		return
	}

	var req models.TransformRequest
	if err := c.ShouldBind(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid transform parameters: "+err.Error())
		return
	}

	data, format, err := h.processor.Transform(raw, req)
	if err != nil {
		h.respondServiceError(c, err, "Failed to process image")
		return
	}

	filename := utils.ReplaceExtension(utils.SanitizeFilename(header.Filename), format)
	c.Header("Content-Disposition", contentDisposition("inline", filename))
	c.Data(http.StatusOK, processor.ContentType(format), data)
}

func (h *ImageHandler) GetDimensions(c *gin.Context) {
	raw, _, err := h.readUploadedFile(c, imageParamKey)
	if err != nil {
		h.respondServiceError(c, err, "Failed to read image")
		return
	}

	width, height, format, err := h.processor.ImageInfo(raw)
	if err != nil {
		h.respondServiceError(c, err, "Failed to read dimensions")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data: gin.H{
			"width":  width,
			"height": height,
			"format": format,
		},
	})
}

// BatchTransform transforms every uploaded image and stores the results.
func (h *ImageHandler) BatchTransform(c *gin.Context) {
	files, err := h.readUploadedFiles(c, imagesParamKey)
	if err != nil {
		h.respondServiceError(c, err, "Failed to read images")
		return
	}

	var req models.TransformRequest
	if err := c.ShouldBind(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid transform parameters: "+err.Error())
		return
	}

	inputs := make([][]byte, len(files))
	for i, f := range files {
		inputs[i] = f.Data
	}

	images := h.processor.BatchTransform(inputs, req)
	response := h.buildBatchResponse(c.Request.Context(), images, files)

	c.JSON(http.StatusOK, models.APIResponse{
		Success: response.Failed < len(files),
		Data:    response,
	})
}

// HealthCheck
func (h *ImageHandler) HealthCheck(c *gin.Context) {
	services := h.storage.HealthCheck(c.Request.Context())
	if h.queue != nil {
		services["queue"] = h.queue.HealthCheck()
	} else {
		services["queue"] = "not configured"
	}

	overall := h.calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}

func (h *ImageHandler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"timestamp": time.Now(),
	}

	cacheStats, err := h.storage.GetCacheStats(c.Request.Context())
	if err != nil {
		h.logger.Warn("Failed to get cache stats", zap.Error(err))
	} else {
		stats["cache"] = cacheStats
	}

	if h.queue != nil {
		queueStats, err := h.queue.GetQueueStats()
		if err != nil {
			h.logger.Warn("Failed to get queue stats", zap.Error(err))
		} else {
			stats["queue"] = queueStats
		}
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    stats,
	})
}
