package processor

import (
	"errors"
	"fmt"
)

var ErrFileTooLarge = errors.New("file too large")

// ValidateImage checks the size limit and that raw decodes completely.
// A maxSize <= 0 disables the size check.
func (p *ImageProcessor) ValidateImage(raw []byte, maxSize int64) error {
	if size := int64(len(raw)); maxSize > 0 && size > maxSize {
		return fmt.Errorf("%w: %d bytes exceeds maximum allowed size %d", ErrFileTooLarge, size, maxSize)
	}

	if _, _, err := Decode(raw); err != nil {
		return err
	}

	return nil
}
