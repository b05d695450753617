package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"album-service/internal/config"
	"album-service/internal/events"
	"album-service/internal/metrics"
	"album-service/internal/models"
	"album-service/internal/storage"
	"album-service/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const mediaAttempts = 2

// UploadInput is an image payload with its form fields. A nil Body means no
// file was sent. IsFavorite is the raw form value, empty meaning false.
type UploadInput struct {
	FileName    string
	Size        int64
	ContentType string
	Body        io.Reader
	Tags        []string
	Person      string
	IsFavorite  string
}

type ImageService struct {
	albums         AlbumStore
	images         ImageStore
	media          storage.MediaStore
	eventPublisher events.Publisher
	mediaTimeout   time.Duration
	retryDelay     time.Duration
	now            func() time.Time
	log            *zap.Logger
}

func NewImageService(albums AlbumStore, images ImageStore, media storage.MediaStore, eventPublisher events.Publisher, cfg *config.MediaConfig, log *zap.Logger) *ImageService {
	return &ImageService{
		albums:         albums,
		images:         images,
		media:          media,
		eventPublisher: eventPublisher,
		mediaTimeout:   cfg.Timeout,
		retryDelay:     cfg.RetryDelay,
		now:            time.Now,
		log:            log,
	}
}

// Upload stores the bytes on the media host, then records the metadata. No
// metadata is written unless the media host accepted the upload.
func (s *ImageService) Upload(ctx context.Context, albumID string, identity models.Identity, input *UploadInput) (*models.Image, error) {
	if _, err := s.authorize(ctx, albumID, identity); err != nil {
		return nil, err
	}
	isFavorite, err := validateUpload(input)
	if err != nil {
		metrics.ImageUploads.WithLabelValues("rejected").Inc()
		return nil, err
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = utils.ContentTypeFromExtension(input.FileName)
	}

	// a body that cannot rewind gets a single attempt
	attempts := 1
	seeker, canRewind := input.Body.(io.Seeker)
	if canRewind {
		attempts = mediaAttempts
	}

	// one key for every attempt, so a retry overwrites a write that landed late
	key := storage.ObjectKey(albumID, input.FileName)
	var stored *storage.StoredObject
	err = s.withRetry(ctx, "store", attempts, func(ctx context.Context) error {
		if canRewind {
			if _, err := seeker.Seek(0, io.SeekStart); err != nil {
				return err
			}
		}
		var err error
		stored, err = s.media.Store(ctx, key, input.Body, input.Size, contentType)
		return err
	})
	if err != nil {
		metrics.ImageUploads.WithLabelValues("failed").Inc()
		return nil, wrapError(ErrUpload, "Failed to upload image", err)
	}

	image := &models.Image{
		ImageID:     uuid.NewString(),
		AlbumID:     albumID,
		Name:        stored.Reference,
		FileName:    input.FileName,
		URL:         stored.URL,
		Tags:        utils.NormalizeTags(input.Tags),
		Person:      strings.TrimSpace(input.Person),
		IsFavorite:  isFavorite,
		Comments:    []string{},
		Size:        input.Size,
		ContentType: contentType,
		UploadedAt:  s.now(),
	}

	created, err := s.images.Create(ctx, image)
	if err != nil {
		// drop the object so nothing on the host is left without metadata
		if removeErr := s.media.Remove(context.WithoutCancel(ctx), stored.Reference); removeErr != nil {
			s.log.Error("Failed to remove media after metadata error",
				zap.String("reference", stored.Reference), zap.Error(removeErr))
		}
		metrics.ImageUploads.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("error creating image metadata: %w", err)
	}

	metrics.ImageUploads.WithLabelValues("success").Inc()
	metrics.ImageUploadBytes.Observe(float64(created.Size))

	if s.eventPublisher != nil {
		if err := s.eventPublisher.PublishImageUploaded(ctx, created.ImageID, albumID, identity.UserID, created.Size); err != nil {
			s.log.Warn("Error publishing image uploaded event", zap.Error(err))
		}
	}
	return created, nil
}

func (s *ImageService) SetFavorite(ctx context.Context, albumID, imageID string, identity models.Identity, isFavorite *bool) (*models.Image, error) {
	if _, err := s.authorize(ctx, albumID, identity); err != nil {
		return nil, err
	}
	if isFavorite == nil {
		return nil, newError(ErrValidation, "isFavorite must be a boolean")
	}

	image, err := s.images.SetFavorite(ctx, albumID, imageID, *isFavorite)
	if err != nil {
		return nil, fmt.Errorf("error updating image: %w", err)
	}
	if image == nil {
		return nil, newError(ErrNotFound, "Image not found")
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.PublishImageFavorited(ctx, imageID, albumID, identity.UserID, *isFavorite); err != nil {
			s.log.Warn("Error publishing image favorited event", zap.Error(err))
		}
	}
	return image, nil
}

func (s *ImageService) AddComment(ctx context.Context, albumID, imageID string, identity models.Identity, comment *string) (*models.Image, error) {
	if _, err := s.authorize(ctx, albumID, identity); err != nil {
		return nil, err
	}
	if comment == nil || strings.TrimSpace(*comment) == "" {
		return nil, newError(ErrValidation, "Comment is required")
	}

	image, err := s.images.AddComment(ctx, albumID, imageID, *comment)
	if err != nil {
		return nil, fmt.Errorf("error adding comment: %w", err)
	}
	if image == nil {
		return nil, newError(ErrNotFound, "Image not found")
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.PublishImageCommented(ctx, imageID, albumID, identity.UserID); err != nil {
			s.log.Warn("Error publishing image commented event", zap.Error(err))
		}
	}
	return image, nil
}

// Delete is reserved to the album owner. See deleteImage for the ordering.
func (s *ImageService) Delete(ctx context.Context, albumID, imageID string, identity models.Identity) error {
	album, err := s.find(ctx, albumID)
	if err != nil {
		return err
	}
	if !IsOwner(album, identity) {
		return newError(ErrForbidden, "Only the album owner can delete images")
	}

	image, err := s.images.GetByID(ctx, albumID, imageID)
	if err != nil {
		return fmt.Errorf("error retrieving image: %w", err)
	}
	if image == nil {
		return newError(ErrNotFound, "Image not found")
	}

	return s.deleteImage(ctx, image, identity.UserID)
}

func (s *ImageService) ListByAlbum(ctx context.Context, albumID string, identity models.Identity) ([]*models.Image, error) {
	if _, err := s.authorize(ctx, albumID, identity); err != nil {
		return nil, err
	}
	images, err := s.images.ListByAlbum(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("error listing images: %w", err)
	}
	return images, nil
}

func (s *ImageService) ListFavorites(ctx context.Context, albumID string, identity models.Identity) ([]*models.Image, error) {
	if _, err := s.authorize(ctx, albumID, identity); err != nil {
		return nil, err
	}
	images, err := s.images.ListFavorites(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("error listing favorite images: %w", err)
	}
	return images, nil
}

// SearchByTags returns images carrying any of the comma separated tags
func (s *ImageService) SearchByTags(ctx context.Context, albumID string, identity models.Identity, tagsCSV string) ([]*models.Image, error) {
	if _, err := s.authorize(ctx, albumID, identity); err != nil {
		return nil, err
	}

	tags := utils.ParseTagQuery(tagsCSV)
	if len(tags) == 0 {
		return nil, newError(ErrValidation, "Please provide tag(s) to search")
	}

	images, err := s.images.SearchByTags(ctx, albumID, tags)
	if err != nil {
		return nil, fmt.Errorf("error searching images: %w", err)
	}
	return images, nil
}

// PurgeAlbum deletes every image of the album, stopping at the first failure
func (s *ImageService) PurgeAlbum(ctx context.Context, albumID string) error {
	images, err := s.images.ListByAlbum(ctx, albumID)
	if err != nil {
		return fmt.Errorf("error listing images: %w", err)
	}

	for _, image := range images {
		if err := s.deleteImage(ctx, image, ""); err != nil {
			return err
		}
	}
	s.log.Info("Purged album images", zap.String("albumId", albumID), zap.Int("count", len(images)))
	return nil
}

// CompletePendingDelete finishes a delete whose metadata removal failed. It
// is a no-op for images that are gone or no longer pending.
func (s *ImageService) CompletePendingDelete(ctx context.Context, imageID string) error {
	image, err := s.images.FindByID(ctx, imageID)
	if err != nil {
		return fmt.Errorf("error retrieving image: %w", err)
	}
	if image == nil || !image.PendingDelete {
		return nil
	}

	if err := s.removeMedia(ctx, image.Name); err != nil {
		return wrapError(ErrUpload, "Failed to delete image from media host", err)
	}
	if err := s.images.Delete(ctx, imageID); err != nil {
		return fmt.Errorf("error deleting image metadata: %w", err)
	}

	metrics.PendingDeletesCompleted.Inc()
	if s.eventPublisher != nil {
		if err := s.eventPublisher.PublishImageDeleted(ctx, imageID, image.AlbumID, ""); err != nil {
			s.log.Warn("Error publishing image deleted event", zap.Error(err))
		}
	}
	return nil
}

// SweepPendingDeletes completes deletes pending for longer than grace and
// returns how many finished.
func (s *ImageService) SweepPendingDeletes(ctx context.Context, grace time.Duration) (int, error) {
	pending, err := s.images.ListPendingDelete(ctx, s.now().Add(-grace))
	if err != nil {
		return 0, fmt.Errorf("error listing pending deletes: %w", err)
	}

	completed := 0
	for _, image := range pending {
		if err := s.CompletePendingDelete(ctx, image.ImageID); err != nil {
			s.log.Warn("Pending delete still failing", zap.String("imageId", image.ImageID), zap.Error(err))
			continue
		}
		completed++
	}
	return completed, nil
}

// deleteImage hides the image, removes the media, then drops the metadata.
// A media failure restores the image and fails the call. A metadata failure
// leaves the image hidden and queues the rest for cleanup.
func (s *ImageService) deleteImage(ctx context.Context, image *models.Image, userID string) error {
	claimed, err := s.images.MarkPendingDelete(ctx, image.ImageID, s.now())
	if err != nil {
		return fmt.Errorf("error marking image for delete: %w", err)
	}
	if !claimed {
		return newError(ErrNotFound, "Image not found")
	}

	if err := s.removeMedia(ctx, image.Name); err != nil {
		if clearErr := s.images.ClearPendingDelete(ctx, image.ImageID); clearErr != nil {
			s.log.Error("Failed to restore image after media error",
				zap.String("imageId", image.ImageID), zap.Error(clearErr))
		}
		metrics.ImageDeletes.WithLabelValues("failed").Inc()
		return wrapError(ErrUpload, "Failed to delete image from media host", err)
	}

	if err := s.images.Delete(ctx, image.ImageID); err != nil {
		s.log.Warn("Image metadata delete failed, queued for cleanup",
			zap.String("imageId", image.ImageID), zap.Error(err))
		metrics.ImageDeletes.WithLabelValues("deferred").Inc()
		if s.eventPublisher != nil {
			if err := s.eventPublisher.PublishImageCleanup(ctx, image.ImageID, image.AlbumID, image.Name); err != nil {
				s.log.Warn("Error publishing image cleanup event", zap.Error(err))
			}
		}
		return nil
	}

	metrics.ImageDeletes.WithLabelValues("success").Inc()
	if s.eventPublisher != nil {
		if err := s.eventPublisher.PublishImageDeleted(ctx, image.ImageID, image.AlbumID, userID); err != nil {
			s.log.Warn("Error publishing image deleted event", zap.Error(err))
		}
	}
	return nil
}

func (s *ImageService) removeMedia(ctx context.Context, reference string) error {
	return s.withRetry(ctx, "remove", mediaAttempts, func(ctx context.Context) error {
		return s.media.Remove(ctx, reference)
	})
}

// withRetry runs fn up to attempts times, each under the media timeout
func (s *ImageService) withRetry(ctx context.Context, operation string, attempts int, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			metrics.MediaRetries.WithLabelValues(operation).Inc()
			select {
			case <-ctx.Done():
				return err
			case <-time.After(s.retryDelay):
			}
		}

		callCtx := ctx
		cancel := func() {}
		if s.mediaTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, s.mediaTimeout)
		}
		err = fn(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		s.log.Warn("Media host call failed", zap.String("operation", operation),
			zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return err
}

func (s *ImageService) find(ctx context.Context, albumID string) (*models.Album, error) {
	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving album: %w", err)
	}
	if album == nil {
		return nil, newError(ErrNotFound, "Album not found")
	}
	return album, nil
}

func (s *ImageService) authorize(ctx context.Context, albumID string, identity models.Identity) (*models.Album, error) {
	album, err := s.find(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if !HasAccess(album, identity) {
		return nil, newError(ErrForbidden, "You don't have access to this album")
	}
	return album, nil
}

// validateUpload checks the payload and returns the parsed favorite flag
func validateUpload(input *UploadInput) (bool, error) {
	if input == nil || input.Body == nil {
		return false, newError(ErrValidation, "No file uploaded")
	}
	if !utils.IsValidFilename(input.FileName) || !utils.IsAllowedImage(input.FileName) {
		return false, newError(ErrValidation, "Only .jpg, .jpeg, .png and .gif images are allowed")
	}
	if input.Size <= 0 {
		return false, newError(ErrValidation, "File is empty")
	}
	if input.Size > utils.MaxImageSize {
		return false, newError(ErrValidation, "File exceeds the 5 MiB size limit")
	}
	if input.IsFavorite == "" {
		return false, nil
	}
	isFavorite, err := strconv.ParseBool(input.IsFavorite)
	if err != nil {
		return false, newError(ErrValidation, "isFavorite must be a boolean")
	}
	return isFavorite, nil
}
