package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/phambaophuc/photo-transform/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// DefaultJobTimeout bounds a single job, including the source download.
const DefaultJobTimeout = 2 * time.Minute

var errMalformedJob = errors.New("malformed job message")

// StartWorkers registers count consumers on the job queue. Each consumer
// handles one delivery at a time until ctx is cancelled.
func (q *QueueService) StartWorkers(ctx context.Context, count int) error {
	for id := 1; id <= count; id++ {
		deliveries, err := q.channel.Consume(
			q.queueName,                        // queue
			fmt.Sprintf("photo-worker-%d", id), // consumer
			false,                              // auto-ack
			false,                              // exclusive
			false,                              // no-local
			false,                              // no-wait
			nil,                                // args
		)
		if err != nil {
			return fmt.Errorf("failed to register consumer %d: %w", id, err)
		}

		q.workers.Add(1)
		go q.consume(ctx, id, deliveries)
	}

	q.logger.Info("Workers started",
		zap.String("queue", q.queueName),
		zap.Int("count", count))
	return nil
}

// Wait blocks until every consumer started by StartWorkers has returned.
func (q *QueueService) Wait() {
	q.workers.Wait()
}

func (q *QueueService) consume(ctx context.Context, workerID int, deliveries <-chan amqp.Delivery) {
	defer q.workers.Done()

	for {
		select {
		case <-ctx.Done():
			q.logger.Info("Worker stopping", zap.Int("worker_id", workerID))
			return
		case msg, ok := <-deliveries:
			if !ok {
				q.logger.Warn("Delivery channel closed", zap.Int("worker_id", workerID))
				return
			}
			q.handleDelivery(ctx, workerID, msg)
		}
	}
}

func (q *QueueService) handleDelivery(ctx context.Context, workerID int, msg amqp.Delivery) {
	job, err := decodeJob(msg.Body)
	if err != nil {
		q.logger.Error("Dropping job message",
			zap.Int("worker_id", workerID),
			zap.String("message_id", msg.MessageId),
			zap.Error(err))
		msg.Nack(false, false)
		return
	}

	logger := q.logger.With(
		zap.String("job_id", job.ID),
		zap.Int("worker_id", workerID),
		zap.Bool("redelivered", msg.Redelivered))
	logger.Info("Processing job")

	jobCtx, cancel := context.WithTimeout(ctx, q.jobTimeout)
	defer cancel()

	q.runner.Handle(jobCtx, job)

	// Interrupted by shutdown: hand the job back to the broker.
	if ctx.Err() != nil && job.Status == models.StatusFailed {
		if err := msg.Nack(false, true); err != nil {
			logger.Error("Failed to requeue job", zap.Error(err))
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("Failed to ack message", zap.Error(err))
	}
}

func decodeJob(body []byte) (*models.ProcessingJob, error) {
	var job models.ProcessingJob
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedJob, err)
	}
	if job.ID == "" {
		return nil, fmt.Errorf("%w: missing id", errMalformedJob)
	}
	if job.Source() == "" {
		return nil, fmt.Errorf("%w: %v", errMalformedJob, ErrNoSource)
	}
	return &job, nil
}
