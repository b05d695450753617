package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedImage(t *testing.T) {
	testCases := []struct {
		filename string
		allowed  bool
	}{
		{"photo.jpg", true},
		{"photo.JPEG", true},
		{"photo.png", true},
		{"anim.gif", true},
		{"notes.txt", false},
		{"archive.png.zip", false},
		{"noextension", false},
	}

	for _, tc := range testCases {
		t.Run(tc.filename, func(t *testing.T) {
			assert.Equal(t, tc.allowed, IsAllowedImage(tc.filename))
		})
	}
}

func TestIsValidFilename(t *testing.T) {
	assert.True(t, IsValidFilename("beach day.png"))
	assert.False(t, IsValidFilename(""))
	assert.False(t, IsValidFilename("../etc/passwd"))
	assert.False(t, IsValidFilename(`dir\photo.png`))
	assert.False(t, IsValidFilename(".."))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@example.com", NormalizeEmail("  Ana@Example.com "))
	assert.True(t, IsValidEmail("ana@example.com"))
	assert.False(t, IsValidEmail("not an email"))
}

func TestNormalizeTags(t *testing.T) {
	testCases := []struct {
		name     string
		raw      []string
		expected []string
	}{
		{"comma separated", []string{" Sunset, beach ,,CITY"}, []string{"sunset", "beach", "city"}},
		{"repeated fields", []string{"Beach", "sunset", "beach"}, []string{"beach", "sunset"}},
		{"blank only", []string{" , ,"}, []string{}},
		{"nothing", nil, []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeTags(tc.raw))
		})
	}
}

func TestParseTagQuery(t *testing.T) {
	assert.Equal(t, []string{"beach", "sunset"}, ParseTagQuery("beach, Sunset"))
	assert.Empty(t, ParseTagQuery(""))
}

func TestDetectContentType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	assert.Equal(t, "image/png", DetectContentType("photo.jpg", png))
	assert.Equal(t, "image/jpeg", DetectContentType("photo.jpg", []byte("plain text")))
	assert.Equal(t, "image/gif", DetectContentType("anim.GIF", nil))
}
