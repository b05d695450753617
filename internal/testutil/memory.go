// Package testutil holds in-memory stand-ins for the Mongo repositories, the
// media host and the event broker.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"album-service/internal/models"
	"album-service/internal/storage"

	"github.com/google/uuid"
)

type UserStore struct {
	mu    sync.Mutex
	users []*models.User
}

func NewUserStore(users ...*models.User) *UserStore {
	s := &UserStore{}
	for _, u := range users {
		c := *u
		s.users = append(s.users, &c)
	}
	return s
}

func (s *UserStore) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, u := range s.users {
		if u.Email == user.Email {
			u.Name = user.Name
			u.Picture = user.Picture
			u.UpdatedAt = now
			c := *u
			return &c, nil
		}
	}
	saved := &models.User{
		UserID:    uuid.NewString(),
		Email:     user.Email,
		Name:      user.Name,
		Picture:   user.Picture,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users = append(s.users, saved)
	c := *saved
	return &c, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Email == email }), nil
}

func (s *UserStore) FindByID(ctx context.Context, userID string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.UserID == userID }), nil
}

func (s *UserStore) List(ctx context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := []*models.User{}
	for _, u := range s.users {
		c := *u
		users = append(users, &c)
	}
	return users, nil
}

func (s *UserStore) find(match func(*models.User) bool) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if match(u) {
			c := *u
			return &c
		}
	}
	return nil
}

type AlbumStore struct {
	mu     sync.Mutex
	albums []*models.Album
}

func NewAlbumStore() *AlbumStore {
	return &AlbumStore{}
}

func cloneAlbum(a *models.Album) *models.Album {
	c := *a
	c.SharedUsers = slices.Clone(a.SharedUsers)
	if c.SharedUsers == nil {
		c.SharedUsers = []string{}
	}
	return &c
}

func (s *AlbumStore) Create(ctx context.Context, album *models.Album) (*models.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.albums = append(s.albums, cloneAlbum(album))
	return cloneAlbum(album), nil
}

func (s *AlbumStore) GetByID(ctx context.Context, albumID string) (*models.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a := s.get(albumID); a != nil {
		return cloneAlbum(a), nil
	}
	return nil, nil
}

func (s *AlbumStore) ListVisible(ctx context.Context, userID, email string) ([]*models.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	albums := []*models.Album{}
	for _, a := range s.albums {
		if a.OwnerID == userID || (email != "" && slices.Contains(a.SharedUsers, email)) {
			albums = append(albums, cloneAlbum(a))
		}
	}
	return albums, nil
}

func (s *AlbumStore) UpdateDescription(ctx context.Context, albumID, description string) (*models.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.get(albumID)
	if a == nil {
		return nil, nil
	}
	a.Description = description
	a.UpdatedAt = time.Now()
	return cloneAlbum(a), nil
}

func (s *AlbumStore) AddSharedUser(ctx context.Context, albumID, email string) (*models.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.get(albumID)
	if a == nil {
		return nil, nil
	}
	if !slices.Contains(a.SharedUsers, email) {
		a.SharedUsers = append(a.SharedUsers, email)
	}
	a.UpdatedAt = time.Now()
	return cloneAlbum(a), nil
}

func (s *AlbumStore) Delete(ctx context.Context, albumID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.albums = slices.DeleteFunc(s.albums, func(a *models.Album) bool { return a.AlbumID == albumID })
	return nil
}

func (s *AlbumStore) get(albumID string) *models.Album {
	for _, a := range s.albums {
		if a.AlbumID == albumID {
			return a
		}
	}
	return nil
}

// ImageStore fails Create or Delete with the matching error field when set
type ImageStore struct {
	mu        sync.Mutex
	images    []*models.Image
	CreateErr error
	DeleteErr error
}

func NewImageStore() *ImageStore {
	return &ImageStore{}
}

func cloneImage(i *models.Image) *models.Image {
	c := *i
	c.Tags = slices.Clone(i.Tags)
	c.Comments = slices.Clone(i.Comments)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Comments == nil {
		c.Comments = []string{}
	}
	return &c
}

func (s *ImageStore) Create(ctx context.Context, image *models.Image) (*models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	s.images = append(s.images, cloneImage(image))
	return cloneImage(image), nil
}

func (s *ImageStore) GetByID(ctx context.Context, albumID, imageID string) (*models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.visible(albumID, imageID); i != nil {
		return cloneImage(i), nil
	}
	return nil, nil
}

func (s *ImageStore) FindByID(ctx context.Context, imageID string) (*models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, i := range s.images {
		if i.ImageID == imageID {
			return cloneImage(i), nil
		}
	}
	return nil, nil
}

func (s *ImageStore) ListByAlbum(ctx context.Context, albumID string) ([]*models.Image, error) {
	return s.list(func(i *models.Image) bool { return i.AlbumID == albumID && !i.PendingDelete }), nil
}

func (s *ImageStore) ListFavorites(ctx context.Context, albumID string) ([]*models.Image, error) {
	return s.list(func(i *models.Image) bool { return i.AlbumID == albumID && !i.PendingDelete && i.IsFavorite }), nil
}

func (s *ImageStore) SearchByTags(ctx context.Context, albumID string, tags []string) ([]*models.Image, error) {
	return s.list(func(i *models.Image) bool {
		if i.AlbumID != albumID || i.PendingDelete {
			return false
		}
		return slices.ContainsFunc(i.Tags, func(t string) bool { return slices.Contains(tags, t) })
	}), nil
}

func (s *ImageStore) SetFavorite(ctx context.Context, albumID, imageID string, isFavorite bool) (*models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.visible(albumID, imageID)
	if i == nil {
		return nil, nil
	}
	i.IsFavorite = isFavorite
	return cloneImage(i), nil
}

func (s *ImageStore) AddComment(ctx context.Context, albumID, imageID, comment string) (*models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.visible(albumID, imageID)
	if i == nil {
		return nil, nil
	}
	i.Comments = append(i.Comments, comment)
	return cloneImage(i), nil
}

func (s *ImageStore) MarkPendingDelete(ctx context.Context, imageID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, i := range s.images {
		if i.ImageID == imageID && !i.PendingDelete {
			i.PendingDelete = true
			i.DeleteRequestedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (s *ImageStore) ClearPendingDelete(ctx context.Context, imageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, i := range s.images {
		if i.ImageID == imageID {
			i.PendingDelete = false
			i.DeleteRequestedAt = nil
		}
	}
	return nil
}

func (s *ImageStore) Delete(ctx context.Context, imageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.images = slices.DeleteFunc(s.images, func(i *models.Image) bool { return i.ImageID == imageID })
	return nil
}

func (s *ImageStore) ListPendingDelete(ctx context.Context, olderThan time.Time) ([]*models.Image, error) {
	return s.list(func(i *models.Image) bool {
		return i.PendingDelete && i.DeleteRequestedAt != nil && !i.DeleteRequestedAt.After(olderThan)
	}), nil
}

// Count includes images with a pending delete
func (s *ImageStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

func (s *ImageStore) visible(albumID, imageID string) *models.Image {
	for _, i := range s.images {
		if i.ImageID == imageID && i.AlbumID == albumID && !i.PendingDelete {
			return i
		}
	}
	return nil
}

func (s *ImageStore) list(match func(*models.Image) bool) []*models.Image {
	s.mu.Lock()
	defer s.mu.Unlock()

	images := []*models.Image{}
	for _, i := range s.images {
		if match(i) {
			images = append(images, cloneImage(i))
		}
	}
	return images
}

var ErrMediaUnavailable = errors.New("media host unavailable")

// MediaStore keeps objects in memory. StoreErrs and RemoveErrs are consumed
// one per call before the call is allowed to succeed. With WriteOnStoreErr set
// a failing Store still keeps the bytes, like a host that times out after the
// write landed.
type MediaStore struct {
	mu              sync.Mutex
	objects         map[string][]byte
	StoreErrs       []error
	RemoveErrs      []error
	WriteOnStoreErr bool
	StoreCalls      int
	StoreKeys       []string
	RemoveCalls     []string
}

func NewMediaStore() *MediaStore {
	return &MediaStore{objects: map[string][]byte{}}
}

func (m *MediaStore) Store(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*storage.StoredObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StoreCalls++
	m.StoreKeys = append(m.StoreKeys, key)
	if len(m.StoreErrs) > 0 {
		err := m.StoreErrs[0]
		m.StoreErrs = m.StoreErrs[1:]
		if m.WriteOnStoreErr {
			if data, readErr := io.ReadAll(reader); readErr == nil {
				m.objects[key] = data
			}
		}
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	m.objects[key] = buf.Bytes()
	return &storage.StoredObject{
		Reference: key,
		URL:       storage.PublicURL("http://media.test/albums", key),
	}, nil
}

func (m *MediaStore) Remove(ctx context.Context, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RemoveCalls = append(m.RemoveCalls, reference)
	if len(m.RemoveErrs) > 0 {
		err := m.RemoveErrs[0]
		m.RemoveErrs = m.RemoveErrs[1:]
		return err
	}
	delete(m.objects, reference)
	return nil
}

func (m *MediaStore) Has(reference string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[reference]
	return ok
}

func (m *MediaStore) Object(reference string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[reference]
}

func (m *MediaStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *MediaStore) RemoveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RemoveCalls)
}
