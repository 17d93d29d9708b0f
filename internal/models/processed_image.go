package models

import "time"

type ProcessedImage struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	Format      string    `json:"format"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	FileSize    int64     `json:"file_size"`
	ProcessedAt time.Time `json:"processed_at"`
}
