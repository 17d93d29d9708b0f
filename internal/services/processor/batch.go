package processor

import (
	"fmt"
	"sync"

	"github.com/phambaophuc/photo-transform/internal/models"
)

// BatchTransform applies req to every input concurrently. Results keep the
// input order; a failed input carries its error instead of data.
func (p *ImageProcessor) BatchTransform(inputs [][]byte, req models.TransformRequest) []models.BatchImage {
	results := make([]models.BatchImage, len(inputs))
	if len(inputs) == 0 {
		return results
	}

	jobs := make(chan int, len(inputs))

	numWorkers := min(p.workers, len(inputs))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.transformOne(i, inputs[i], req)
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (p *ImageProcessor) transformOne(i int, raw []byte, req models.TransformRequest) models.BatchImage {
	data, format, err := p.Transform(raw, req)
	if err != nil {
		return models.BatchImage{Error: fmt.Sprintf("failed to process image %d: %v", i, err)}
	}

	width, height, err := Dimensions(data)
	if err != nil {
		return models.BatchImage{Error: fmt.Sprintf("failed to read dimensions of image %d: %v", i, err)}
	}

	return models.BatchImage{
		Data:     data,
		Format:   format,
		Width:    width,
		Height:   height,
		FileSize: int64(len(data)),
	}
}
