package service

import (
	"context"
	"time"

	"album-service/internal/models"
)

// Lookups return nil, nil when nothing matches.

type UserStore interface {
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, userID string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type AlbumStore interface {
	Create(ctx context.Context, album *models.Album) (*models.Album, error)
	GetByID(ctx context.Context, albumID string) (*models.Album, error)
	ListVisible(ctx context.Context, userID, email string) ([]*models.Album, error)
	UpdateDescription(ctx context.Context, albumID, description string) (*models.Album, error)
	AddSharedUser(ctx context.Context, albumID, email string) (*models.Album, error)
	Delete(ctx context.Context, albumID string) error
}

// ImageStore read and update paths skip images with a pending delete.
type ImageStore interface {
	Create(ctx context.Context, image *models.Image) (*models.Image, error)
	GetByID(ctx context.Context, albumID, imageID string) (*models.Image, error)
	FindByID(ctx context.Context, imageID string) (*models.Image, error)
	ListByAlbum(ctx context.Context, albumID string) ([]*models.Image, error)
	ListFavorites(ctx context.Context, albumID string) ([]*models.Image, error)
	SearchByTags(ctx context.Context, albumID string, tags []string) ([]*models.Image, error)
	SetFavorite(ctx context.Context, albumID, imageID string, isFavorite bool) (*models.Image, error)
	AddComment(ctx context.Context, albumID, imageID, comment string) (*models.Image, error)
	MarkPendingDelete(ctx context.Context, imageID string, at time.Time) (bool, error)
	ClearPendingDelete(ctx context.Context, imageID string) error
	Delete(ctx context.Context, imageID string) error
	ListPendingDelete(ctx context.Context, olderThan time.Time) ([]*models.Image, error)
}

// StateStore keeps one-time OAuth state values
type StateStore interface {
	Save(ctx context.Context, state string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (bool, error)
}

// OAuthProvider turns an authorization code into a Google profile
type OAuthProvider interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*models.GoogleUserInfo, error)
}
