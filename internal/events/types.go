package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// Album events
	EventTypeAlbumCreated EventType = "album.created"
	EventTypeAlbumShared  EventType = "album.shared"
	EventTypeAlbumDeleted EventType = "album.deleted"

	// Image events
	EventTypeImageUploaded  EventType = "image.uploaded"
	EventTypeImageFavorited EventType = "image.favorited"
	EventTypeImageCommented EventType = "image.commented"
	EventTypeImageDeleted   EventType = "image.deleted"

	// EventTypeImageCleanup asks a consumer to finish an image delete
	EventTypeImageCleanup EventType = "image.cleanup"
)

// BaseEvent represents the common fields for all events
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Version   string    `json:"version"`
}

type AlbumEvent struct {
	BaseEvent
	AlbumID    string `json:"albumId"`
	OwnerID    string `json:"ownerId"`
	Name       string `json:"name,omitempty"`
	SharedWith string `json:"sharedWith,omitempty"`
}

type ImageEvent struct {
	BaseEvent
	ImageID    string `json:"imageId"`
	AlbumID    string `json:"albumId"`
	UserID     string `json:"userId,omitempty"`
	Size       int64  `json:"size,omitempty"`
	IsFavorite *bool  `json:"isFavorite,omitempty"`
	Reference  string `json:"reference,omitempty"`
}

func newBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Version:   "1.0",
	}
}

func NewAlbumEvent(eventType EventType, albumID, ownerID string) *AlbumEvent {
	return &AlbumEvent{
		BaseEvent: newBaseEvent(eventType),
		AlbumID:   albumID,
		OwnerID:   ownerID,
	}
}

func NewImageEvent(eventType EventType, imageID, albumID, userID string) *ImageEvent {
	return &ImageEvent{
		BaseEvent: newBaseEvent(eventType),
		ImageID:   imageID,
		AlbumID:   albumID,
		UserID:    userID,
	}
}
