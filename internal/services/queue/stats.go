package queue

import (
	"fmt"

	"github.com/phambaophuc/photo-transform/internal/models"
)

// GetQueueStats reports the broker-side depth of the job queue.
func (q *QueueService) GetQueueStats() (*models.QueueStats, error) {
	info, err := q.channel.QueueInspect(q.queueName)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect queue %s: %w", q.queueName, err)
	}

	return &models.QueueStats{
		Name:      info.Name,
		Pending:   info.Messages,
		Consumers: info.Consumers,
	}, nil
}

func (q *QueueService) HealthCheck() string {
	switch {
	case q.conn == nil || q.conn.IsClosed():
		return "unhealthy: broker connection closed"
	case q.channel == nil:
		return "unhealthy: no channel"
	default:
		return "healthy"
	}
}
