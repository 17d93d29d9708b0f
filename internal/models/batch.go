package models

import "time"

type BatchImage struct {
	Data     []byte
	Format   string
	Width    int
	Height   int
	FileSize int64
	Error    string
}

type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ImageResponse struct {
	Filename    string    `json:"filename"`
	URL         string    `json:"url,omitempty"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	FileSize    int64     `json:"file_size,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
	Error       string    `json:"error,omitempty"`
}

type BatchResponse struct {
	Images []ImageResponse `json:"images"`
	Failed int             `json:"failed"`
}
