package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StoredObject is what the media host hands back for an upload
type StoredObject struct {
	Reference string
	URL       string
}

// MediaStore keeps image bytes on a remote object host. Store writes under
// the given key, so repeating a call replaces rather than duplicates. Remove
// must treat a missing object as success.
type MediaStore interface {
	Store(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*StoredObject, error)
	Remove(ctx context.Context, reference string) error
}

// ObjectKey returns a fresh key under the album's folder, keeping the
// lowercased extension of fileName.
func ObjectKey(albumID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("albums/%s/%s%s", albumID, uuid.NewString(), ext)
}

// PublicURL joins a base URL and an object key.
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
