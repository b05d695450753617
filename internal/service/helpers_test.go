package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"album-service/internal/config"
	"album-service/internal/models"
	"album-service/internal/testutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	owner    = models.Identity{UserID: "owner-1", Email: "owner@example.com", Name: "Owner"}
	friend   = models.Identity{UserID: "friend-1", Email: "friend@example.com", Name: "Friend"}
	stranger = models.Identity{UserID: "stranger-1", Email: "stranger@example.com", Name: "Stranger"}
)

func ptr[T any](v T) *T {
	return &v
}

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:   "test-secret",
		TokenExpiry: 24 * time.Hour,
		Issuer:      "album-service",
		AdminSecret: "admin-secret",
		AdminID:     "test-admin-id",
		AdminEmail:  "admin@example.com",
		AdminName:   "Admin User",
		StateTTL:    10 * time.Minute,
	}
}

func testMediaConfig() *config.MediaConfig {
	return &config.MediaConfig{
		Timeout:    time.Second,
		RetryDelay: time.Millisecond,
	}
}

type fixture struct {
	users  *testutil.UserStore
	albums *testutil.AlbumStore
	images *testutil.ImageStore
	media  *testutil.MediaStore
	events *testutil.Publisher

	albumService *AlbumService
	imageService *ImageService
}

func newFixture(t *testing.T, cascadeDelete bool) *fixture {
	t.Helper()

	f := &fixture{
		users: testutil.NewUserStore(
			&models.User{UserID: owner.UserID, Email: owner.Email, Name: owner.Name},
			&models.User{UserID: friend.UserID, Email: friend.Email, Name: friend.Name},
			&models.User{UserID: stranger.UserID, Email: stranger.Email, Name: stranger.Name},
		),
		albums: testutil.NewAlbumStore(),
		images: testutil.NewImageStore(),
		media:  testutil.NewMediaStore(),
		events: testutil.NewPublisher(),
	}
	f.imageService = NewImageService(f.albums, f.images, f.media, f.events, testMediaConfig(), zap.NewNop())
	f.albumService = NewAlbumService(f.albums, f.users, f.imageService, f.events, cascadeDelete, zap.NewNop())
	return f
}

func (f *fixture) createAlbum(t *testing.T, name string) *models.Album {
	t.Helper()
	album, err := f.albumService.Create(context.Background(), owner, models.CreateAlbumRequest{Name: ptr(name)})
	require.NoError(t, err)
	return album
}

func (f *fixture) shareWithFriend(t *testing.T, albumID string) {
	t.Helper()
	_, err := f.albumService.Share(context.Background(), albumID, owner, ptr(friend.Email))
	require.NoError(t, err)
}

func (f *fixture) upload(t *testing.T, albumID string, tags ...string) *models.Image {
	t.Helper()
	image, err := f.imageService.Upload(context.Background(), albumID, owner, pngUpload("photo.png", 1024, tags...))
	require.NoError(t, err)
	return image
}

func favoriteUpload(flag string) *UploadInput {
	input := pngUpload("photo.png", 100)
	input.IsFavorite = flag
	return input
}

func pngUpload(fileName string, size int, tags ...string) *UploadInput {
	return &UploadInput{
		FileName:    fileName,
		Size:        int64(size),
		ContentType: "image/png",
		Body:        bytes.NewReader(make([]byte, size)),
		Tags:        tags,
	}
}
