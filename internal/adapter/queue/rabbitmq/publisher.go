package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Topology names the exchange, queue & routing key reports travel through
type Topology struct {
	Exchange   string
	Queue      string
	RoutingKey string
}

type queueService struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	topology Topology
	log      *zap.Logger
}

func NewQueueService(url string, topology Topology, log *zap.Logger) (*queueService, error) {
	var conn *amqp.Connection
	var err error

	// Retry connection up to 10 times with backoff
	maxRetries := 10
	for i := 1; i <= maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			var ch *amqp.Channel
			ch, err = conn.Channel()
			if err == nil {
				q := &queueService{
					conn:     conn,
					ch:       ch,
					topology: topology,
					log:      log,
				}
				if err = q.declareExchange(); err == nil {
					return q, nil
				}
			}
			conn.Close()
		}

		log.Warn("Failed to connect to RabbitMQ, retrying...",
			zap.Int("attempt", i),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)

		// Simple incremental backoff
		time.Sleep(time.Duration(i*2) * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

func (q *queueService) declareExchange() error {
	return q.ch.ExchangeDeclare(
		q.topology.Exchange, // name
		"topic",             // kind
		true,                // durable
		false,               // auto-deleted
		false,               // internal
		false,               // no-wait
		nil,                 // arguments
	)
}

// PublishReport fans a cycle report out on the reports exchange
func (q *queueService) PublishReport(ctx context.Context, report *domain.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return err
	}

	err = q.ch.PublishWithContext(ctx,
		q.topology.Exchange,   // Exchange
		q.topology.RoutingKey, // Routing key
		false,                 // Mandatory
		false,                 // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			MessageId:    report.CycleID,
			Timestamp:    report.GeneratedAt,
			Type:         "schedule.report",
			Body:         body,
		})

	if err != nil {
		q.log.Error("Failed to publish report", zap.Error(err))
		return err
	}

	q.log.Debug("Published report to RabbitMQ",
		zap.String("cycle_id", report.CycleID),
		zap.String("key", q.topology.RoutingKey))
	return nil
}

// Close shuts the channel and the connection
func (q *queueService) Close() error {
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}
