package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"album-service/internal/events"
	"album-service/internal/models"
	"album-service/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AlbumPurger removes every image of an album along with its media
type AlbumPurger interface {
	PurgeAlbum(ctx context.Context, albumID string) error
}

type AlbumService struct {
	albums         AlbumStore
	users          UserStore
	purger         AlbumPurger
	eventPublisher events.Publisher
	cascadeDelete  bool
	log            *zap.Logger
}

// NewAlbumService cascades album deletes to images when cascadeDelete is set
func NewAlbumService(albums AlbumStore, users UserStore, purger AlbumPurger, eventPublisher events.Publisher, cascadeDelete bool, log *zap.Logger) *AlbumService {
	return &AlbumService{
		albums:         albums,
		users:          users,
		purger:         purger,
		eventPublisher: eventPublisher,
		cascadeDelete:  cascadeDelete,
		log:            log,
	}
}

func (s *AlbumService) Create(ctx context.Context, identity models.Identity, req models.CreateAlbumRequest) (*models.Album, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, newError(ErrValidation, "Album name is required")
	}

	now := time.Now()
	album := &models.Album{
		AlbumID:     uuid.NewString(),
		Name:        strings.TrimSpace(*req.Name),
		OwnerID:     identity.UserID,
		SharedUsers: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Description != nil {
		album.Description = *req.Description
	}

	created, err := s.albums.Create(ctx, album)
	if err != nil {
		return nil, fmt.Errorf("error creating album: %w", err)
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.PublishAlbumCreated(ctx, created.AlbumID, created.OwnerID, created.Name); err != nil {
			s.log.Warn("Error publishing album created event", zap.Error(err))
		}
	}
	return created, nil
}

func (s *AlbumService) ListVisible(ctx context.Context, identity models.Identity) ([]*models.Album, error) {
	albums, err := s.albums.ListVisible(ctx, identity.UserID, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("error listing albums: %w", err)
	}
	return albums, nil
}

func (s *AlbumService) Get(ctx context.Context, albumID string, identity models.Identity) (*models.Album, error) {
	album, err := s.find(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if !HasAccess(album, identity) {
		return nil, newError(ErrForbidden, "You don't have access to this album")
	}
	return album, nil
}

func (s *AlbumService) UpdateDescription(ctx context.Context, albumID string, identity models.Identity, description *string) (*models.Album, error) {
	if _, err := s.findOwned(ctx, albumID, identity, "Only the album owner can update it"); err != nil {
		return nil, err
	}
	if description == nil {
		return nil, newError(ErrValidation, "Description must be a string")
	}

	album, err := s.albums.UpdateDescription(ctx, albumID, *description)
	if err != nil {
		return nil, fmt.Errorf("error updating album: %w", err)
	}
	if album == nil {
		return nil, newError(ErrNotFound, "Album not found")
	}
	return album, nil
}

// Share grants a registered user access to the album. Sharing with an email
// that already has access changes nothing.
func (s *AlbumService) Share(ctx context.Context, albumID string, identity models.Identity, email *string) ([]string, error) {
	album, err := s.findOwned(ctx, albumID, identity, "Only the album owner can share it")
	if err != nil {
		return nil, err
	}
	if email == nil || strings.TrimSpace(*email) == "" {
		return nil, newError(ErrValidation, "Email is required")
	}

	target := utils.NormalizeEmail(*email)
	if !utils.IsValidEmail(target) {
		return nil, newError(ErrValidation, "Email must be a valid address")
	}
	user, err := s.users.FindByEmail(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	if user == nil {
		return nil, newError(ErrNotFound, "User with this email does not exist")
	}

	if slices.Contains(album.SharedUsers, target) {
		return album.SharedUsers, nil
	}

	updated, err := s.albums.AddSharedUser(ctx, albumID, target)
	if err != nil {
		return nil, fmt.Errorf("error sharing album: %w", err)
	}
	if updated == nil {
		return nil, newError(ErrNotFound, "Album not found")
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.PublishAlbumShared(ctx, albumID, album.OwnerID, target); err != nil {
			s.log.Warn("Error publishing album shared event", zap.Error(err))
		}
	}
	return updated.SharedUsers, nil
}

// Delete removes the album. With cascading on, its images go first and a
// failure there keeps the album.
func (s *AlbumService) Delete(ctx context.Context, albumID string, identity models.Identity) error {
	album, err := s.findOwned(ctx, albumID, identity, "Only the album owner can delete it")
	if err != nil {
		return err
	}

	if s.cascadeDelete && s.purger != nil {
		if err := s.purger.PurgeAlbum(ctx, albumID); err != nil {
			return err
		}
	}

	if err := s.albums.Delete(ctx, albumID); err != nil {
		return fmt.Errorf("error deleting album: %w", err)
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.PublishAlbumDeleted(ctx, albumID, album.OwnerID); err != nil {
			s.log.Warn("Error publishing album deleted event", zap.Error(err))
		}
	}
	return nil
}

func (s *AlbumService) find(ctx context.Context, albumID string) (*models.Album, error) {
	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving album: %w", err)
	}
	if album == nil {
		return nil, newError(ErrNotFound, "Album not found")
	}
	return album, nil
}

func (s *AlbumService) findOwned(ctx context.Context, albumID string, identity models.Identity, denied string) (*models.Album, error) {
	album, err := s.find(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if !IsOwner(album, identity) {
		return nil, newError(ErrForbidden, denied)
	}
	return album, nil
}
