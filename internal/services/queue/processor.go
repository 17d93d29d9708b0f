package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/phambaophuc/photo-transform/internal/models"
	"github.com/phambaophuc/photo-transform/internal/services/processor"
	"github.com/phambaophuc/photo-transform/internal/services/storage"
	"github.com/phambaophuc/photo-transform/pkg/utils"
	"go.uber.org/zap"
)

var ErrNoSource = errors.New("job has neither photo key nor image url")

// JobRunner executes transform jobs independently of the broker.
type JobRunner struct {
	processor   *processor.ImageProcessor
	storage     *storage.StorageService
	logger      *zap.Logger
	maxFileSize int64
}

func NewJobRunner(
	processor *processor.ImageProcessor,
	storage *storage.StorageService,
	logger *zap.Logger,
	maxFileSize int64,
) *JobRunner {
	return &JobRunner{
		processor:   processor,
		storage:     storage,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

// Handle runs job and records every status transition.
func (r *JobRunner) Handle(ctx context.Context, job *models.ProcessingJob) {
	job.Status = models.StatusProcessing
	r.storeJobResult(ctx, job)

	result, err := r.Run(ctx, job)
	if err != nil {
		job.Status = models.StatusFailed
		job.Error = err.Error()
		r.logger.Error("Job processing failed",
			zap.String("job_id", job.ID),
			zap.Error(err))
	} else {
		job.Status = models.StatusCompleted
		job.Result = result
		r.logger.Info("Job completed successfully",
			zap.String("job_id", job.ID))
	}

	r.storeJobResult(ctx, job)
}

// Run transforms the job source and stores the derivative.
func (r *JobRunner) Run(ctx context.Context, job *models.ProcessingJob) (*models.ProcessedImage, error) {
	source := job.Source()
	if source == "" {
		return nil, ErrNoSource
	}

	resultKey := r.storage.GenerateResultKey(source, job.Request)

	cachedData, err := r.storage.GetFromCache(ctx, resultKey)
	if err == nil && cachedData != nil {
		var cachedResult models.ProcessedImage
		if err := json.Unmarshal(cachedData, &cachedResult); err == nil {
			r.logger.Info("Cache hit", zap.String("job_id", job.ID))
			cachedResult.ID = job.ID
			return &cachedResult, nil
		}
		r.logger.Warn("Failed to unmarshal cached result", zap.String("job_id", job.ID))
	}

	raw, err := r.load(ctx, job)
	if err != nil {
		return nil, err
	}

	data, format, err := r.processor.Transform(raw, job.Request)
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	width, height, err := processor.Dimensions(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read processed dimensions: %w", err)
	}

	filename := utils.GenerateFilename(job.ID, format)
	key, url, err := r.storage.Upload(ctx, data, filename, processor.ContentType(format))
	if err != nil {
		return nil, fmt.Errorf("failed to save processed image: %w", err)
	}

	result := &models.ProcessedImage{
		ID:          job.ID,
		Source:      source,
		Key:         key,
		URL:         url,
		Format:      format,
		Width:       width,
		Height:      height,
		FileSize:    int64(len(data)),
		ProcessedAt: time.Now(),
	}

	resultBytes, _ := json.Marshal(result)
	if err := r.storage.SetCache(ctx, resultKey, resultBytes); err != nil {
		r.logger.Warn("Failed to cache result", zap.Error(err))
	}

	return result, nil
}

func (r *JobRunner) load(ctx context.Context, job *models.ProcessingJob) ([]byte, error) {
	if job.PhotoKey != "" {
		raw, err := r.storage.Download(ctx, job.PhotoKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load photo: %w", err)
		}
		return raw, nil
	}

	raw, _, err := utils.DownloadImage(ctx, job.ImageURL, r.maxFileSize)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (r *JobRunner) storeJobResult(ctx context.Context, job *models.ProcessingJob) {
	if err := r.storage.SaveJob(ctx, job); err != nil {
		r.logger.Warn("Failed to store job state",
			zap.String("job_id", job.ID),
			zap.String("status", job.Status),
			zap.Error(err))
	}
}
