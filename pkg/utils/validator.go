package utils

import (
	"net/mail"
	"path/filepath"
	"slices"
	"strings"
)

// MaxImageSize is the largest accepted upload, 5 MiB
const MaxImageSize int64 = 5 * 1024 * 1024

var allowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// IsAllowedImage checks the file extension, ignoring case
func IsAllowedImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return slices.Contains(allowedImageExtensions, ext)
}

// IsValidFilename rejects names carrying path separators or control characters
func IsValidFilename(filename string) bool {
	if filename == "" || len(filename) > 255 {
		return false
	}
	if strings.ContainsAny(filename, "\\/\x00") {
		return false
	}
	return filename != "." && filename != ".."
}

func IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// NormalizeEmail trims and lowercases an address for storage and lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeTags splits comma separated entries, trims and lowercases each tag,
// and drops blanks and repeats. Order of first appearance is kept.
func NormalizeTags(raw []string) []string {
	tags := []string{}
	for _, entry := range raw {
		for _, tag := range strings.Split(entry, ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" || slices.Contains(tags, tag) {
				continue
			}
			tags = append(tags, tag)
		}
	}
	return tags
}

// ParseTagQuery reads a comma separated tag query such as "sunset,Beach"
func ParseTagQuery(csv string) []string {
	return NormalizeTags([]string{csv})
}
