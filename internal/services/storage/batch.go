package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/phambaophuc/photo-transform/internal/models"
)

type UploadResult struct {
	Key string
	URL string
	Err error
}

// UploadMultiple uploads files concurrently. Results keep the input order;
// the returned error summarizes every failed upload.
func (s *StorageService) UploadMultiple(ctx context.Context, files []models.UploadFile) ([]UploadResult, error) {
	results := make([]UploadResult, len(files))
	if len(files) == 0 {
		return results, nil
	}

	numWorkers := min(5, len(files))

	jobs := make(chan int, len(files))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				key, url, err := s.Upload(ctx, files[i].Data, files[i].Filename, files[i].ContentType)
				results[i] = UploadResult{Key: key, URL: url, Err: err}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	var failedUploads []string
	for i, result := range results {
		if result.Err != nil {
			failedUploads = append(failedUploads, fmt.Sprintf("file %d: %v", i, result.Err))
		}
	}

	if len(failedUploads) > 0 {
		return results, fmt.Errorf("failed to upload %d files: %s",
			len(failedUploads), strings.Join(failedUploads, "; "))
	}

	return results, nil
}
