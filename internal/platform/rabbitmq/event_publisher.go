package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"enrollhub/internal/model"
)

// EnrollmentEventPublisher pushes enrollment audit events onto a durable
// queue. Persistence of the events happens in the worker, off the request
// path.
type EnrollmentEventPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewEnrollmentEventPublisher(conn *amqp.Connection, queueName string) *EnrollmentEventPublisher {
	return &EnrollmentEventPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *EnrollmentEventPublisher) Publish(ctx context.Context, event model.EnrollmentEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal enrollment event failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish enrollment event failed: %w", err)
	}
	return nil
}
