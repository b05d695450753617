package models

import "time"

type Album struct {
	AlbumID     string    `bson:"albumId" json:"albumId"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	OwnerID     string    `bson:"ownerId" json:"ownerId"`
	SharedUsers []string  `bson:"sharedUsers" json:"sharedUsers"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

type CreateAlbumRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type UpdateAlbumRequest struct {
	Description *string `json:"description"`
}

type ShareAlbumRequest struct {
	Email *string `json:"email"`
}
