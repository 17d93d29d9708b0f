package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/phambaophuc/photo-transform/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const jobMessageType = "photo.transform"

// PublishJob enqueues job as a persistent message. streadway/amqp has no
// context support, so ctx is only checked before publishing.
func (q *QueueService) PublishJob(ctx context.Context, job *models.ProcessingJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Type:         jobMessageType,
		MessageId:    job.ID,
		Timestamp:    job.CreatedAt,
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}

	q.publishMu.Lock()
	err = q.channel.Publish("", q.queueName, false, false, msg)
	q.publishMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish job %s: %w", job.ID, err)
	}

	q.logger.Info("Job queued",
		zap.String("job_id", job.ID),
		zap.String("source", job.Source()))
	return nil
}
