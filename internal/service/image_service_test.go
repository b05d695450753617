package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"album-service/internal/events"
	"album-service/internal/testutil"
	"album-service/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts a 2 MiB png", func(t *testing.T) {
		f := newFixture(t, true)
		album := f.createAlbum(t, "Summer")

		image, err := f.imageService.Upload(ctx, album.AlbumID, owner, pngUpload("Beach.png", 2*1024*1024, "Sunset, beach", "BEACH"))
		require.NoError(t, err)

		assert.Equal(t, album.AlbumID, image.AlbumID)
		assert.Equal(t, "Beach.png", image.FileName)
		assert.True(t, strings.HasPrefix(image.URL, "http://media.test/albums/"))
		assert.Equal(t, []string{"sunset", "beach"}, image.Tags)
		assert.Equal(t, int64(2*1024*1024), image.Size)
		assert.Len(t, f.media.Object(image.Name), 2*1024*1024)
		assert.Equal(t, 1, f.events.Count(events.EventTypeImageUploaded))
	})

	t.Run("rejects invalid files before touching the media host", func(t *testing.T) {
		testCases := []struct {
			name  string
			input *UploadInput
		}{
			{"text file", pngUpload("notes.txt", 100)},
			{"over 5 MiB", pngUpload("big.png", int(utils.MaxImageSize)+1)},
			{"empty file", pngUpload("empty.png", 0)},
			{"no file", nil},
			{"no file body", &UploadInput{IsFavorite: "true"}},
			{"bad favorite flag", favoriteUpload("maybe")},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				f := newFixture(t, true)
				album := f.createAlbum(t, "Summer")

				_, err := f.imageService.Upload(ctx, album.AlbumID, owner, tc.input)
				assert.ErrorIs(t, err, ErrValidation)
				assert.Equal(t, 0, f.media.StoreCalls)
				assert.Equal(t, 0, f.images.Count())
			})
		}
	})

	t.Run("checks access before validating", func(t *testing.T) {
		f := newFixture(t, true)
		album := f.createAlbum(t, "Summer")

		_, err := f.imageService.Upload(ctx, album.AlbumID, stranger, pngUpload("notes.txt", 100))
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = f.imageService.Upload(ctx, album.AlbumID, stranger, &UploadInput{})
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = f.imageService.Upload(ctx, album.AlbumID, stranger, favoriteUpload("maybe"))
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = f.imageService.Upload(ctx, "missing", owner, pngUpload("photo.png", 100))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("parses the favorite flag", func(t *testing.T) {
		f := newFixture(t, true)
		album := f.createAlbum(t, "Summer")

		image, err := f.imageService.Upload(ctx, album.AlbumID, owner, favoriteUpload("true"))
		require.NoError(t, err)
		assert.True(t, image.IsFavorite)

		image, err = f.imageService.Upload(ctx, album.AlbumID, owner, pngUpload("photo.png", 100))
		require.NoError(t, err)
		assert.False(t, image.IsFavorite)
	})

	t.Run("shared users can upload", func(t *testing.T) {
		f := newFixture(t, true)
		album := f.createAlbum(t, "Summer")
		f.shareWithFriend(t, album.AlbumID)

		_, err := f.imageService.Upload(ctx, album.AlbumID, friend, pngUpload("photo.jpg", 100))
		assert.NoError(t, err)
	})

	t.Run("retries a failed store once", func(t *testing.T) {
		f := newFixture(t, true)
		album := f.createAlbum(t, "Summer")
		f.media.StoreErrs = []error{testutil.ErrMediaUnavailable}

		image, err := f.imageService.Upload(ctx, album.AlbumID, owner, pngUpload("photo.png", 100))
		require.NoError(t, err)
		assert.Equal(t, 2, f.media.StoreCalls)
		assert.Len(t, f.media.Object(image.Name), 100)
	})

	t.Run("retry reuses the key of a write that landed", func(t *testing.T) {
		f := newFixture(t, true)
		album := f.createAlbum(t, "Summer")
		f.media.StoreErrs = []error{context.DeadlineExceeded}
		f.media.WriteOnStoreErr = true

		image, err := f.imageService.Upload(ctx, album.AlbumID, owner, pngUpload("photo.png", 100))
		require.NoError(t, err)
		require.Len(t, f.media.StoreKeys, 2)
		assert.Equal(t, f.media.StoreKeys[0], f.media.StoreKeys[1])
		assert.Equal(t, image.Name, f.media.StoreKeys[0])
		assert.Equal(t, 1, f.media.Len())
	})

	t.Run("does not retry a body that cannot rewind", func(t *testing.T) {
		f := newFixture(t, true)
		album := f.createAlbum(t, "Summer")
		f.media.StoreErrs = []error{testutil.ErrMediaUnavailable}

		input := pngUpload("photo.png", 100)
		input.Body = io.MultiReader(bytes.NewReader(make([]byte, 100)))

		_, err := f.imageService.Upload(ctx, album.AlbumID, owner, input)
		assert.ErrorIs(t, err, ErrUpload)
		assert.Equal(t, 1, f.media.StoreCalls)
		assert.Equal(t, 0, f.images.Count())
	})

	t.Run("removes the media when metadata cannot be saved", func(t *testing.T) {
		f := newFixture(t, true)
		album := f.createAlbum(t, "Summer")
		f.images.CreateErr = errors.New("write conflict")

		_, err := f.imageService.Upload(ctx, album.AlbumID, owner, pngUpload("photo.png", 100))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUpload)
		assert.Equal(t, 0, f.media.Len())
		assert.Equal(t, 1, f.media.RemoveCount())
	})
}

func TestImageAnnotations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	album := f.createAlbum(t, "Summer")
	f.shareWithFriend(t, album.AlbumID)
	image := f.upload(t, album.AlbumID)

	t.Run("shared user favorites and comments", func(t *testing.T) {
		updated, err := f.imageService.SetFavorite(ctx, album.AlbumID, image.ImageID, friend, ptr(true))
		require.NoError(t, err)
		assert.True(t, updated.IsFavorite)

		updated, err = f.imageService.AddComment(ctx, album.AlbumID, image.ImageID, friend, ptr("Nice!"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Nice!"}, updated.Comments)

		images, err := f.imageService.ListByAlbum(ctx, album.AlbumID, friend)
		require.NoError(t, err)
		assert.Len(t, images, 1)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		_, err := f.imageService.SetFavorite(ctx, album.AlbumID, image.ImageID, stranger, ptr(true))
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = f.imageService.AddComment(ctx, album.AlbumID, image.ImageID, stranger, nil)
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = f.imageService.ListByAlbum(ctx, album.AlbumID, stranger)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("validates payloads", func(t *testing.T) {
		_, err := f.imageService.SetFavorite(ctx, album.AlbumID, image.ImageID, owner, nil)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = f.imageService.AddComment(ctx, album.AlbumID, image.ImageID, owner, ptr("  "))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown image", func(t *testing.T) {
		_, err := f.imageService.SetFavorite(ctx, album.AlbumID, "missing", owner, ptr(true))
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = f.imageService.AddComment(ctx, album.AlbumID, "missing", owner, ptr("hi"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFavoriteFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	album := f.createAlbum(t, "Summer")
	first := f.upload(t, album.AlbumID)
	f.upload(t, album.AlbumID)

	_, err := f.imageService.SetFavorite(ctx, album.AlbumID, first.ImageID, owner, ptr(true))
	require.NoError(t, err)

	favorites, err := f.imageService.ListFavorites(ctx, album.AlbumID, owner)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, first.ImageID, favorites[0].ImageID)

	_, err = f.imageService.SetFavorite(ctx, album.AlbumID, first.ImageID, owner, ptr(false))
	require.NoError(t, err)

	favorites, err = f.imageService.ListFavorites(ctx, album.AlbumID, owner)
	require.NoError(t, err)
	assert.Empty(t, favorites)
	assert.Equal(t, 2, f.events.Count(events.EventTypeImageFavorited))
}

func TestSearchByTags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	album := f.createAlbum(t, "Summer")
	sunset := f.upload(t, album.AlbumID, "beach", "sunset")
	city := f.upload(t, album.AlbumID, "city")
	f.upload(t, album.AlbumID, "beach")

	found, err := f.imageService.SearchByTags(ctx, album.AlbumID, owner, " Sunset , CITY")
	require.NoError(t, err)

	var ids []string
	for _, image := range found {
		ids = append(ids, image.ImageID)
	}
	assert.ElementsMatch(t, []string{sunset.ImageID, city.ImageID}, ids)

	found, err = f.imageService.SearchByTags(ctx, album.AlbumID, owner, "beach")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = f.imageService.SearchByTags(ctx, album.AlbumID, owner, " , ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.imageService.SearchByTags(ctx, album.AlbumID, stranger, "beach")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestImageDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes metadata and media once", func(t *testing.T) {
		f := newFixture(t, true)
		album := f.createAlbum(t, "Summer")
		image := f.upload(t, album.AlbumID)

		require.NoError(t, f.imageService.Delete(ctx, album.AlbumID, image.ImageID, owner))

		images, err := f.imageService.ListByAlbum(ctx, album.AlbumID, owner)
		require.NoError(t, err)
		assert.Empty(t, images)
		assert.Equal(t, []string{image.Name}, f.media.RemoveCalls)
		assert.False(t, f.media.Has(image.Name))
		assert.Equal(t, 1, f.events.Count(events.EventTypeImageDeleted))

		err = f.imageService.Delete(ctx, album.AlbumID, image.ImageID, owner)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("only the owner deletes", func(t *testing.T) {
		f := newFixture(t, true)
		album := f.createAlbum(t, "Summer")
		f.shareWithFriend(t, album.AlbumID)
		image := f.upload(t, album.AlbumID)

		err := f.imageService.Delete(ctx, album.AlbumID, image.ImageID, friend)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, 0, f.media.RemoveCount())
	})

	t.Run("restores the image when the media host fails", func(t *testing.T) {
		f := newFixture(t, true)
		album := f.createAlbum(t, "Summer")
		image := f.upload(t, album.AlbumID)
		f.media.RemoveErrs = []error{testutil.ErrMediaUnavailable, testutil.ErrMediaUnavailable}

		err := f.imageService.Delete(ctx, album.AlbumID, image.ImageID, owner)
		assert.ErrorIs(t, err, ErrUpload)

		images, err := f.imageService.ListByAlbum(ctx, album.AlbumID, owner)
		require.NoError(t, err)
		require.Len(t, images, 1)
		assert.Equal(t, image.ImageID, images[0].ImageID)
		assert.True(t, f.media.Has(image.Name))
	})

	t.Run("a retried media failure still succeeds", func(t *testing.T) {
		f := newFixture(t, true)
		album := f.createAlbum(t, "Summer")
		image := f.upload(t, album.AlbumID)
		f.media.RemoveErrs = []error{testutil.ErrMediaUnavailable}

		require.NoError(t, f.imageService.Delete(ctx, album.AlbumID, image.ImageID, owner))
		assert.Equal(t, 2, f.media.RemoveCount())
		assert.Equal(t, 0, f.images.Count())
	})

	t.Run("defers a failed metadata delete to cleanup", func(t *testing.T) {
		f := newFixture(t, true)
		album := f.createAlbum(t, "Summer")
		image := f.upload(t, album.AlbumID)
		f.images.DeleteErr = errors.New("primary stepped down")

		require.NoError(t, f.imageService.Delete(ctx, album.AlbumID, image.ImageID, owner))

		images, err := f.imageService.ListByAlbum(ctx, album.AlbumID, owner)
		require.NoError(t, err)
		assert.Empty(t, images)
		assert.Equal(t, 1, f.images.Count())
		assert.Equal(t, 1, f.events.Count(events.EventTypeImageCleanup))
		assert.Equal(t, 0, f.events.Count(events.EventTypeImageDeleted))

		f.images.DeleteErr = nil
		require.NoError(t, f.imageService.CompletePendingDelete(ctx, image.ImageID))
		assert.Equal(t, 0, f.images.Count())
		assert.Equal(t, 1, f.events.Count(events.EventTypeImageDeleted))

		// a duplicate cleanup message is harmless
		require.NoError(t, f.imageService.CompletePendingDelete(ctx, image.ImageID))
	})

	t.Run("cleanup ignores live images", func(t *testing.T) {
		f := newFixture(t, true)
		album := f.createAlbum(t, "Summer")
		image := f.upload(t, album.AlbumID)

		require.NoError(t, f.imageService.CompletePendingDelete(ctx, image.ImageID))
		assert.Equal(t, 1, f.images.Count())
		assert.Equal(t, 0, f.media.RemoveCount())
	})
}

func TestSweepPendingDeletes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	album := f.createAlbum(t, "Summer")
	image := f.upload(t, album.AlbumID)
	f.images.DeleteErr = errors.New("timeout")
	require.NoError(t, f.imageService.Delete(ctx, album.AlbumID, image.ImageID, owner))

	t.Run("keeps failing deletes pending", func(t *testing.T) {
		completed, err := f.imageService.SweepPendingDeletes(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, completed)
		assert.Equal(t, 1, f.images.Count())
	})

	f.images.DeleteErr = nil

	t.Run("waits for the grace period", func(t *testing.T) {
		completed, err := f.imageService.SweepPendingDeletes(ctx, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 0, completed)
	})

	t.Run("completes old pending deletes", func(t *testing.T) {
		completed, err := f.imageService.SweepPendingDeletes(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, completed)
		assert.Equal(t, 0, f.images.Count())
	})
}
