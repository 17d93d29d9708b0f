package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/phambaophuc/photo-transform/internal/config"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// QueueService moves transform jobs through a durable RabbitMQ queue and
// runs them with a JobRunner.
type QueueService struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	logger     *zap.Logger
	queueName  string
	runner     *JobRunner
	jobTimeout time.Duration

	publishMu sync.Mutex
	workers   sync.WaitGroup
}

func NewQueueService(cfg config.RabbitMQConfig, runner *JobRunner, logger *zap.Logger) (*QueueService, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareJobQueue(channel, cfg.Queue); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &QueueService{
		conn:       conn,
		channel:    channel,
		logger:     logger.With(zap.String("component", "queue")),
		queueName:  cfg.Queue,
		runner:     runner,
		jobTimeout: DefaultJobTimeout,
	}, nil
}

func declareJobQueue(channel *amqp.Channel, name string) error {
	_, err := channel.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}

	// One unacknowledged job per consumer.
	if err := channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch: %w", err)
	}
	return nil
}

// Close shuts the channel and connection. Workers should be stopped first.
func (q *QueueService) Close() error {
	if q.channel != nil {
		if err := q.channel.Close(); err != nil {
			q.logger.Warn("Failed to close channel", zap.Error(err))
		}
	}
	if q.conn != nil && !q.conn.IsClosed() {
		return q.conn.Close()
	}
	return nil
}
