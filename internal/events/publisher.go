// Package events publishes and consumes domain events over RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"crfms-backend/internal/logger"
)

// Publisher emits domain events. Implementations must be safe for
// concurrent use by the service layer.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data map[string]any) error
	Close() error
}

// envelope is the wire format shared with downstream consumers.
type envelope struct {
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// RabbitPublisher publishes events to a durable topic exchange using the
// event type as the routing key.
type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to open channel")
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, errors.Wrap(err, "failed to declare exchange")
	}

	logger.Info("Connected to RabbitMQ", "exchange", exchange)
	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, eventType string, data map[string]any) error {
	body, err := json.Marshal(envelope{
		EventType: eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}

	logger.BrokerCall("publish", eventType)
	err = p.ch.PublishWithContext(ctx, p.exchange, eventType, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	logger.BrokerResult("publish", err, "event_type", eventType)
	if err != nil {
		return errors.Wrap(err, "failed to publish event")
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}

// NopPublisher drops events. Useful in tests and broker-less environments.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, eventType string, data map[string]any) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}
