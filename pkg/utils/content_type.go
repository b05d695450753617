package utils

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

const defaultContentType = "application/octet-stream"

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// ContentTypeFromExtension resolves the MIME type of an image file name
func ContentTypeFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if contentType, ok := imageContentTypes[ext]; ok {
		return contentType
	}
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		return contentType
	}
	return defaultContentType
}

// DetectContentType prefers the sniffed type of the first bytes when it is an
// image, and falls back to the file extension.
func DetectContentType(filename string, head []byte) string {
	if len(head) > 0 {
		if sniffed := http.DetectContentType(head); strings.HasPrefix(sniffed, "image/") {
			return sniffed
		}
	}
	return ContentTypeFromExtension(filename)
}
