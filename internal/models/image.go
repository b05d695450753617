package models

import "time"

// Image is the metadata of an uploaded picture. Name holds the media reference.
type Image struct {
	ImageID           string     `bson:"imageId" json:"imageId"`
	AlbumID           string     `bson:"albumId" json:"albumId"`
	Name              string     `bson:"name" json:"name"`
	FileName          string     `bson:"fileName" json:"fileName"`
	URL               string     `bson:"url,omitempty" json:"url,omitempty"`
	Tags              []string   `bson:"tags" json:"tags"`
	Person            string     `bson:"person" json:"person"`
	IsFavorite        bool       `bson:"isFavorite" json:"isFavorite"`
	Comments          []string   `bson:"comments" json:"comments"`
	Size              int64      `bson:"size" json:"size"`
	ContentType       string     `bson:"contentType" json:"contentType"`
	UploadedAt        time.Time  `bson:"uploadedAt" json:"uploadedAt"`
	PendingDelete     bool       `bson:"pendingDelete" json:"-"`
	DeleteRequestedAt *time.Time `bson:"deleteRequestedAt,omitempty" json:"-"`
}

type FavoriteRequest struct {
	IsFavorite *bool `json:"isFavorite"`
}

type CommentRequest struct {
	Comment *string `json:"comment"`
}
