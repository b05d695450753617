package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer defines the interface for event consumption
type Consumer interface {
	Start() error
	Close() error
}

// CleanupHandler finishes image deletes that could not complete inline
type CleanupHandler interface {
	CompletePendingDelete(ctx context.Context, imageID string) error
}

// EventConsumer works the image cleanup queue
type EventConsumer struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	queueName    string
	exchangeName string
	handler      CleanupHandler
	timeout      time.Duration
	shutdown     chan struct{}
	wg           sync.WaitGroup
	enabled      bool
	log          *zap.Logger
}

// NewEventConsumer returns a disabled consumer when rabbitURI is empty
func NewEventConsumer(rabbitURI, exchangeName, queueName string, handler CleanupHandler, log *zap.Logger) (*EventConsumer, error) {
	consumer := &EventConsumer{
		queueName:    queueName,
		exchangeName: exchangeName,
		handler:      handler,
		timeout:      30 * time.Second,
		shutdown:     make(chan struct{}),
		log:          log,
	}

	if rabbitURI == "" {
		log.Warn("RabbitMQ URI is empty, event consumption is disabled")
		return consumer, nil
	}

	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.Qos(
		10,    // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := declareExchange(channel, exchangeName); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	_, err = channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	consumer.conn = conn
	consumer.channel = channel
	consumer.enabled = true
	return consumer, nil
}

// Start starts consuming events
func (c *EventConsumer) Start() error {
	if !c.enabled {
		c.log.Info("Event consumption is disabled, not starting consumer")
		return nil
	}

	err := c.channel.QueueBind(
		c.queueName,                   // queue name
		string(EventTypeImageCleanup), // routing key
		c.exchangeName,                // exchange
		false,                         // no-wait
		nil,                           // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue to exchange: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.consume(msgs)
	}()

	c.log.Info("Event consumer started", zap.String("queue", c.queueName))
	return nil
}

func (c *EventConsumer) consume(msgs <-chan amqp091.Delivery) {
	for {
		select {
		case <-c.shutdown:
			c.log.Info("Stopping event consumer")
			return
		case msg, ok := <-msgs:
			if !ok {
				c.log.Warn("Message channel closed, consumer stopped")
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
			err := c.processMessage(ctx, msg.RoutingKey, msg.Body)
			cancel()

			if err != nil {
				c.log.Error("Error processing message", zap.String("routingKey", msg.RoutingKey), zap.Error(err))
				// requeue once, the sweeper picks up whatever is left
				if err := msg.Nack(false, !msg.Redelivered); err != nil {
					c.log.Error("Error NACKing message", zap.Error(err))
				}
				continue
			}
			if err := msg.Ack(false); err != nil {
				c.log.Error("Error ACKing message", zap.Error(err))
			}
		}
	}
}

func (c *EventConsumer) processMessage(ctx context.Context, routingKey string, body []byte) error {
	switch EventType(routingKey) {
	case EventTypeImageCleanup:
		var event ImageEvent
		if err := json.Unmarshal(body, &event); err != nil {
			c.log.Error("Dropping malformed cleanup event", zap.Error(err))
			return nil
		}
		if event.ImageID == "" {
			c.log.Error("Dropping cleanup event without image id")
			return nil
		}
		c.log.Info("Completing pending image delete", zap.String("imageId", event.ImageID))
		return c.handler.CompletePendingDelete(ctx, event.ImageID)
	default:
		c.log.Warn("Unknown routing key", zap.String("routingKey", routingKey))
		return nil
	}
}

// Close closes the consumer
func (c *EventConsumer) Close() error {
	if !c.enabled {
		return nil
	}

	close(c.shutdown)
	c.wg.Wait()

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.log.Error("Error closing RabbitMQ channel", zap.Error(err))
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}

	return nil
}
