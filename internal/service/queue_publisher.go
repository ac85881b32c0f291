package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/invoice-dashboard/internal/queue"
)

// EventPublisher receives invoice events after a mutation commits.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.InvoiceEvent) error
}

// QueuePublisher publishes invoice events to a durable RabbitMQ queue. Each
// call dials its own connection. Errors are logged and returned; callers
// never fail a request because of them.
type QueuePublisher struct {
	URL   string
	Queue string
}

func NewQueuePublisher(url, queueName string) *QueuePublisher {
	if queueName == "" {
		queueName = queue.DefaultQueue
	}
	return &QueuePublisher{URL: url, Queue: queueName}
}

func (p *QueuePublisher) Publish(ctx context.Context, ev queue.InvoiceEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	conn, err := queue.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := queue.Declare(ch, p.Queue); err != nil {
		log.Printf("rabbitmq: declare %s failed: %v", p.Queue, err)
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         "invoice." + ev.Action,
		MessageId:    ev.InvoiceID + ":" + ev.OccurredAt,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, msg); err != nil {
		log.Printf("rabbitmq: publish invoice.%s failed: %v", ev.Action, err)
		return err
	}
	return nil
}

// NopPublisher drops every event. It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.InvoiceEvent) error { return nil }
