package service

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"album-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasAccess(t *testing.T) {
	album := &models.Album{OwnerID: owner.UserID, SharedUsers: []string{friend.Email}}

	testCases := []struct {
		name     string
		album    *models.Album
		user     models.Identity
		expected bool
	}{
		{"owner", album, owner, true},
		{"shared email", album, friend, true},
		{"stranger", album, stranger, false},
		{"shared email with another id", album, models.Identity{UserID: "other", Email: friend.Email}, true},
		{"owner id is not an email match", album, models.Identity{Email: owner.UserID}, false},
		{"empty identity", album, models.Identity{}, false},
		{"admin without a share", album, AdminIdentity(testAuthConfig()), false},
		{"admin as owner", &models.Album{OwnerID: testAuthConfig().AdminID}, AdminIdentity(testAuthConfig()), true},
		{"nil album", nil, owner, false},
		{"empty shared entry", &models.Album{OwnerID: owner.UserID, SharedUsers: []string{""}}, models.Identity{UserID: "x"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, HasAccess(tc.album, tc.user))
		})
	}
}

func TestIsOwner(t *testing.T) {
	album := &models.Album{OwnerID: owner.UserID, SharedUsers: []string{friend.Email}}

	assert.True(t, IsOwner(album, owner))
	assert.False(t, IsOwner(album, friend))
	assert.False(t, IsOwner(&models.Album{}, models.Identity{}))
}

// ListVisible must return exactly the albums HasAccess grants
func TestListVisibleMatchesHasAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	rng := rand.New(rand.NewSource(7))

	people := []models.Identity{owner, friend, stranger}
	var created []*models.Album
	for i := 0; i < 30; i++ {
		creator := people[rng.Intn(len(people))]
		album, err := f.albumService.Create(ctx, creator, models.CreateAlbumRequest{Name: ptr(fmt.Sprintf("album-%d", i))})
		require.NoError(t, err)

		for _, p := range people {
			if p.UserID != creator.UserID && rng.Intn(2) == 0 {
				_, err := f.albumService.Share(ctx, album.AlbumID, creator, ptr(p.Email))
				require.NoError(t, err)
			}
		}
		created = append(created, album)
	}

	for _, p := range people {
		visible, err := f.albumService.ListVisible(ctx, p)
		require.NoError(t, err)

		visibleIDs := map[string]bool{}
		for _, a := range visible {
			visibleIDs[a.AlbumID] = true
		}
		for _, a := range created {
			current, err := f.albums.GetByID(ctx, a.AlbumID)
			require.NoError(t, err)
			assert.Equal(t, HasAccess(current, p), visibleIDs[a.AlbumID], "album %s for %s", a.Name, p.Email)
		}
	}
}
