package models

import "strings"

// TransformRequest describes the optional operations applied to a photo.
// Width and Height <= 0 are unset; a single set dimension keeps the aspect ratio.
type TransformRequest struct {
	Width   int    `json:"width,omitempty" form:"width" binding:"omitempty,min=0,max=10000"`
	Height  int    `json:"height,omitempty" form:"height" binding:"omitempty,min=0,max=10000"`
	Format  string `json:"format,omitempty" form:"format"`
	Sepia   bool   `json:"sepia,omitempty" form:"sepia"`
	Blur    bool   `json:"blur,omitempty" form:"blur"`
	Quality int    `json:"quality,omitempty" form:"quality" binding:"omitempty,min=1,max=100"`
}

// HasResize reports whether a width or height was requested.
func (r TransformRequest) HasResize() bool {
	return r.Width > 0 || r.Height > 0
}

// WithoutOriginalFormat clears the "original" format keyword, which asks for
// the stored encoding rather than a conversion.
func (r TransformRequest) WithoutOriginalFormat() TransformRequest {
	if strings.EqualFold(strings.TrimSpace(r.Format), FormatOriginal) {
		r.Format = ""
	}
	return r
}

// IsEmpty reports whether the request asks for no change at all.
func (r TransformRequest) IsEmpty() bool {
	return !r.HasResize() && r.Format == "" && !r.Sepia && !r.Blur
}

const (
	FormatJPG  = "jpg"
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatBMP  = "bmp"

	FormatOriginal = "original"
)
