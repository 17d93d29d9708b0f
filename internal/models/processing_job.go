package models

import "time"

type JobRequest struct {
	PhotoKey string           `json:"photo_key"`
	ImageURL string           `json:"image_url"`
	Request  TransformRequest `json:"request"`
}

type ProcessingJob struct {
	ID        string           `json:"id"`
	PhotoKey  string           `json:"photo_key,omitempty"`
	ImageURL  string           `json:"image_url,omitempty"`
	Request   TransformRequest `json:"request"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	Result    *ProcessedImage  `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Source returns the storage key or URL the job reads from.
func (j *ProcessingJob) Source() string {
	if j.PhotoKey != "" {
		return j.PhotoKey
	}
	return j.ImageURL
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
