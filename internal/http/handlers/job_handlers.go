package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phambaophuc/photo-transform/internal/models"
	"github.com/phambaophuc/photo-transform/internal/services/storage"
	"go.uber.org/zap"
)

// CreateJob queues an asynchronous transform of a stored photo or remote image.
func (h *ImageHandler) CreateJob(c *gin.Context) {
	if h.queue == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Job queue is not configured")
		return
	}

	var req models.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid job request: "+err.Error())
		return
	}

	if req.PhotoKey == "" && req.ImageURL == "" {
		h.respondError(c, http.StatusBadRequest, "Either photo_key or image_url is required")
		return
	}

	job := &models.ProcessingJob{
		ID:        uuid.New().String(),
		PhotoKey:  req.PhotoKey,
		ImageURL:  req.ImageURL,
		Request:   req.Request,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}

	ctx := c.Request.Context()
	if err := h.storage.SaveJob(ctx, job); err != nil {
		h.logger.Warn("Failed to record pending job", zap.String("job_id", job.ID), zap.Error(err))
	}

	if err := h.queue.PublishJob(ctx, job); err != nil {
		h.logger.Error("Failed to publish job", zap.String("job_id", job.ID), zap.Error(err))

		job.Status = models.StatusFailed
		job.Error = "failed to queue job"
		if err := h.storage.SaveJob(ctx, job); err != nil {
			h.logger.Warn("Failed to record job failure", zap.String("job_id", job.ID), zap.Error(err))
		}

		h.respondError(c, http.StatusInternalServerError, "Failed to queue job")
		return
	}

	c.JSON(http.StatusAccepted, models.APIResponse{
		Success: true,
		Data:    job,
	})
}

func (h *ImageHandler) GetJob(c *gin.Context) {
	job, err := h.storage.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.respondError(c, http.StatusNotFound, "Job not found")
			return
		}

		h.respondServiceError(c, err, "Failed to load job")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    job,
	})
}
