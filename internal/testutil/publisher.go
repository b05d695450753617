package testutil

import (
	"context"
	"slices"
	"sync"

	"album-service/internal/events"
)

// Publisher records the routing key of every published event
type Publisher struct {
	mu     sync.Mutex
	events []events.EventType
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) record(eventType events.EventType) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *Publisher) Events() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}

func (p *Publisher) Count(eventType events.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, e := range p.events {
		if e == eventType {
			n++
		}
	}
	return n
}

func (p *Publisher) PublishAlbumCreated(ctx context.Context, albumID, ownerID, name string) error {
	return p.record(events.EventTypeAlbumCreated)
}

func (p *Publisher) PublishAlbumShared(ctx context.Context, albumID, ownerID, email string) error {
	return p.record(events.EventTypeAlbumShared)
}

func (p *Publisher) PublishAlbumDeleted(ctx context.Context, albumID, ownerID string) error {
	return p.record(events.EventTypeAlbumDeleted)
}

func (p *Publisher) PublishImageUploaded(ctx context.Context, imageID, albumID, userID string, size int64) error {
	return p.record(events.EventTypeImageUploaded)
}

func (p *Publisher) PublishImageFavorited(ctx context.Context, imageID, albumID, userID string, isFavorite bool) error {
	return p.record(events.EventTypeImageFavorited)
}

func (p *Publisher) PublishImageCommented(ctx context.Context, imageID, albumID, userID string) error {
	return p.record(events.EventTypeImageCommented)
}

func (p *Publisher) PublishImageDeleted(ctx context.Context, imageID, albumID, userID string) error {
	return p.record(events.EventTypeImageDeleted)
}

func (p *Publisher) PublishImageCleanup(ctx context.Context, imageID, albumID, reference string) error {
	return p.record(events.EventTypeImageCleanup)
}

func (p *Publisher) Close() error {
	return nil
}
