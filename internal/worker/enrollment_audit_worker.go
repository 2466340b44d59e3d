package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"enrollhub/internal/model"
	"enrollhub/internal/repository"
)

// EnrollmentAuditWorker drains the enrollment event queue and persists each
// event as an audit row, keeping the write off the request path.
type EnrollmentAuditWorker struct {
	conn      *amqp.Connection
	repo      *repository.EnrollmentEventRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEnrollmentAuditWorker(conn *amqp.Connection, repo *repository.EnrollmentEventRepository, queueName string) *EnrollmentAuditWorker {
	return &EnrollmentAuditWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *EnrollmentAuditWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(d)
			}
		}
	}()

	return nil
}

func (w *EnrollmentAuditWorker) handle(d amqp.Delivery) {
	var event model.EnrollmentEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		log.Printf("worker decode enrollment event failed: %v", err)
		_ = d.Nack(false, false)
		return
	}

	if err := w.repo.Create(&event); err != nil {
		log.Printf("worker persist enrollment event failed: %v", err)
		_ = d.Nack(false, false)
		return
	}

	_ = d.Ack(false)
}

func (w *EnrollmentAuditWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
