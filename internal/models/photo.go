package models

import "time"

type Photo struct {
	Key              string    `json:"key"`
	URL              string    `json:"url"`
	Owner            string    `json:"owner"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	Size             int64     `json:"size"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	Description      string    `json:"description,omitempty"`
	Hashtags         string    `json:"hashtags,omitempty"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
