package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, 10*1024*1024, cfg.Server.BodyLimit)
		assert.Equal(t, 24*time.Hour, cfg.Auth.TokenExpiry)
		assert.Equal(t, "test-admin-id", cfg.Auth.AdminID)
		assert.Equal(t, "admin@example.com", cfg.Auth.AdminEmail)
		assert.Equal(t, MediaBackendMinIO, cfg.Media.Backend)
		assert.True(t, cfg.Media.CascadeAlbumDelete)
		assert.Equal(t, "album.events", cfg.RabbitMQ.Exchange)
		assert.Len(t, cfg.Google.Scopes, 2)
	})

	t.Run("reads prefixed variables", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("GOOGLE_CLIENT_ID", "client-id")
		t.Setenv("MINIO_BUCKET_NAME", "photos")
		t.Setenv("MONGODB_DATABASE", "gallery")
		t.Setenv("ALBUM_CASCADE_DELETE", "false")
		t.Setenv("HOSTNAME", "pod-7")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "client-id", cfg.Google.ClientID)
		assert.Equal(t, "photos", cfg.MinIO.BucketName)
		assert.Equal(t, "gallery", cfg.MongoDB.Database)
		assert.False(t, cfg.Media.CascadeAlbumDelete)
		assert.Equal(t, "album-service-pod-7", cfg.Server.ServiceID())
	})

	t.Run("requires a JWT secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Auth:  AuthConfig{JWTSecret: "secret", TokenExpiry: time.Hour},
			Media: MediaConfig{Backend: MediaBackendMinIO},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"minio", func(c *Config) {}, false},
		{"s3 with public url", func(c *Config) {
			c.Media.Backend = MediaBackendS3
			c.S3.PublicURL = "https://cdn.example.com"
		}, false},
		{"s3 without public url", func(c *Config) { c.Media.Backend = MediaBackendS3 }, true},
		{"unknown backend", func(c *Config) { c.Media.Backend = "ftp" }, true},
		{"zero expiry", func(c *Config) { c.Auth.TokenExpiry = 0 }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			if tc.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
