package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/crabzie/production-scheduler/internal/core/domain"
	"go.uber.org/zap"
)

// ConsumeReports binds the board queue to the reports exchange and hands every report to handler
func (q *queueService) ConsumeReports(ctx context.Context, handler func(report *domain.Report) error) error {
	qName := q.topology.Queue

	// Only the newest report matters, so the queue keeps a single message
	_, err := q.ch.QueueDeclare(
		qName, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		map[string]interface{}{
			"x-max-length": int32(1),
			"x-overflow":   "drop-head",
		},
	)
	if err != nil {
		return err
	}

	if err := q.ch.QueueBind(qName, q.topology.RoutingKey, q.topology.Exchange, false, nil); err != nil {
		return err
	}

	msgs, err := q.ch.Consume(
		qName, // queue
		"",    // consumer
		false, // auto-ack (We want to ack manually after the report is cached)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	q.log.Info("Started consuming reports", zap.String("queue", qName))

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					q.log.Warn("Report delivery channel closed")
					return
				}

				var report domain.Report
				if err := json.Unmarshal(d.Body, &report); err != nil {
					q.log.Error("Failed to unmarshal report", zap.Error(err))
					d.Nack(false, false) // discard invalid message
					continue
				}

				if err := handler(&report); err != nil {
					q.log.Error("Report handling failed", zap.String("cycle_id", report.CycleID), zap.Error(err))
					// The next cycle supersedes this report, so it is not requeued
					d.Nack(false, false)
				} else {
					d.Ack(false)
				}
			}
		}
	}()

	return nil
}
