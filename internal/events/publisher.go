package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher defines the interface for event publishing
type Publisher interface {
	// Album events
	PublishAlbumCreated(ctx context.Context, albumID, ownerID, name string) error
	PublishAlbumShared(ctx context.Context, albumID, ownerID, email string) error
	PublishAlbumDeleted(ctx context.Context, albumID, ownerID string) error

	// Image events
	PublishImageUploaded(ctx context.Context, imageID, albumID, userID string, size int64) error
	PublishImageFavorited(ctx context.Context, imageID, albumID, userID string, isFavorite bool) error
	PublishImageCommented(ctx context.Context, imageID, albumID, userID string) error
	PublishImageDeleted(ctx context.Context, imageID, albumID, userID string) error
	PublishImageCleanup(ctx context.Context, imageID, albumID, reference string) error

	Close() error
}

// EventPublisher implements the Publisher interface using RabbitMQ
type EventPublisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	enabled      bool
	log          *zap.Logger
}

// NewEventPublisher returns a disabled publisher when rabbitURI is empty
func NewEventPublisher(rabbitURI, exchangeName string, log *zap.Logger) (*EventPublisher, error) {
	if rabbitURI == "" {
		log.Warn("RabbitMQ URI is empty, event publishing is disabled")
		return &EventPublisher{
			enabled: false,
			log:     log,
		}, nil
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

	if err := declareExchange(channel, exchangeName); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &EventPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		enabled:      true,
		log:          log,
	}, nil
}

func declareExchange(channel *amqp091.Channel, exchangeName string) error {
	err := channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	return nil
}

func (p *EventPublisher) publishEvent(ctx context.Context, routingKey EventType, event any) error {
	if !p.enabled {
		p.log.Debug("Event publishing is disabled, skipping event", zap.String("routingKey", string(routingKey)))
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		pubCtx,
		p.exchangeName,     // exchange
		string(routingKey), // routing key
		false,              // mandatory
		false,              // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.log.Debug("Published event", zap.String("routingKey", string(routingKey)))
	return nil
}

func (p *EventPublisher) PublishAlbumCreated(ctx context.Context, albumID, ownerID, name string) error {
	event := NewAlbumEvent(EventTypeAlbumCreated, albumID, ownerID)
	event.Name = name
	return p.publishEvent(ctx, EventTypeAlbumCreated, event)
}

func (p *EventPublisher) PublishAlbumShared(ctx context.Context, albumID, ownerID, email string) error {
	event := NewAlbumEvent(EventTypeAlbumShared, albumID, ownerID)
	event.SharedWith = email
	return p.publishEvent(ctx, EventTypeAlbumShared, event)
}

func (p *EventPublisher) PublishAlbumDeleted(ctx context.Context, albumID, ownerID string) error {
	return p.publishEvent(ctx, EventTypeAlbumDeleted, NewAlbumEvent(EventTypeAlbumDeleted, albumID, ownerID))
}

func (p *EventPublisher) PublishImageUploaded(ctx context.Context, imageID, albumID, userID string, size int64) error {
	event := NewImageEvent(EventTypeImageUploaded, imageID, albumID, userID)
	event.Size = size
	return p.publishEvent(ctx, EventTypeImageUploaded, event)
}

func (p *EventPublisher) PublishImageFavorited(ctx context.Context, imageID, albumID, userID string, isFavorite bool) error {
	event := NewImageEvent(EventTypeImageFavorited, imageID, albumID, userID)
	event.IsFavorite = &isFavorite
	return p.publishEvent(ctx, EventTypeImageFavorited, event)
}

func (p *EventPublisher) PublishImageCommented(ctx context.Context, imageID, albumID, userID string) error {
	return p.publishEvent(ctx, EventTypeImageCommented, NewImageEvent(EventTypeImageCommented, imageID, albumID, userID))
}

func (p *EventPublisher) PublishImageDeleted(ctx context.Context, imageID, albumID, userID string) error {
	return p.publishEvent(ctx, EventTypeImageDeleted, NewImageEvent(EventTypeImageDeleted, imageID, albumID, userID))
}

func (p *EventPublisher) PublishImageCleanup(ctx context.Context, imageID, albumID, reference string) error {
	event := NewImageEvent(EventTypeImageCleanup, imageID, albumID, "")
	event.Reference = reference
	return p.publishEvent(ctx, EventTypeImageCleanup, event)
}

// Close closes the connection to RabbitMQ
func (p *EventPublisher) Close() error {
	if !p.enabled {
		return nil
	}

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Error("Error closing RabbitMQ channel", zap.Error(err))
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}

	return nil
}
