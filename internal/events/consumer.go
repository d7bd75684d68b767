package events

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"crfms-backend/internal/logger"
)

// HandlerFunc processes one decoded domain event.
type HandlerFunc func(ctx context.Context, eventType string, data map[string]any)

// Consumer drains durable per-event queues bound to the topic exchange.
type Consumer struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewConsumer(url, exchange string) (*Consumer, error) {
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

	return &Consumer{conn: conn, ch: ch, exchange: exchange}, nil
}

// Start declares one durable queue per event type, binds it to the
// exchange and consumes until ctx is cancelled. Messages are acked only
// after the handler returns.
func (c *Consumer) Start(ctx context.Context, eventTypes []string, handler HandlerFunc) error {
	for _, eventType := range eventTypes {
		queue, err := c.ch.QueueDeclare(QueueName(eventType), true, false, false, false, nil)
		if err != nil {
			return errors.Wrapf(err, "failed to declare queue for %s", eventType)
		}

		if err := c.ch.QueueBind(queue.Name, eventType, c.exchange, false, nil); err != nil {
			return errors.Wrapf(err, "failed to bind queue for %s", eventType)
		}

		deliveries, err := c.ch.Consume(queue.Name, "", false, false, false, false, nil)
		if err != nil {
			return errors.Wrapf(err, "failed to consume queue for %s", eventType)
		}

		go c.consumeLoop(ctx, deliveries, handler)
		logger.Info("Consuming domain events", "queue", queue.Name, "routing_key", eventType)
	}
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context, deliveries <-chan amqp.Delivery, handler HandlerFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}

			var env envelope
			if err := json.Unmarshal(delivery.Body, &env); err != nil {
				logger.Error("Failed to decode event, dropping", "error", err)
				_ = delivery.Nack(false, false)
				continue
			}

			handler(ctx, env.EventType, env.Data)
			_ = delivery.Ack(false)
		}
	}
}

func (c *Consumer) Close() error {
	if err := c.ch.Close(); err != nil {
		return err
	}
	return c.conn.Close()
}

// QueueName derives the durable queue name for an event type.
func QueueName(eventType string) string {
	return "crfms_" + strings.ReplaceAll(eventType, ".", "_") + "_queue"
}
