package service

import (
	"slices"

	"album-service/internal/models"
)

// HasAccess reports whether user may read and annotate the album: the owner
// and every shared email do.
func HasAccess(album *models.Album, user models.Identity) bool {
	if album == nil {
		return false
	}
	if IsOwner(album, user) {
		return true
	}
	return user.Email != "" && slices.Contains(album.SharedUsers, user.Email)
}

// IsOwner gates description edits, sharing and deletes
func IsOwner(album *models.Album, user models.Identity) bool {
	return album != nil && user.UserID != "" && album.OwnerID == user.UserID
}
