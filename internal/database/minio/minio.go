package minio

import (
	"context"
	"fmt"
	"io"

	"album-service/internal/config"
	"album-service/internal/storage"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const publicReadPolicy = `{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Principal": {"AWS": ["*"]},
		"Action": ["s3:GetObject"],
		"Resource": ["arn:aws:s3:::%s/albums/*"]
	}]
}`

// InitMinioClient connects to MinIO and makes sure the album bucket exists and
// serves album objects anonymously.
func InitMinioClient(ctx context.Context, cfg *config.MinIOConfig, log *zap.Logger) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("error checking if bucket %s exists: %w", cfg.BucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("error creating bucket %s: %w", cfg.BucketName, err)
		}
		log.Info("Created bucket", zap.String("bucket", cfg.BucketName))
	}

	if err := client.SetBucketPolicy(ctx, cfg.BucketName, fmt.Sprintf(publicReadPolicy, cfg.BucketName)); err != nil {
		log.Warn("Failed to set public read policy", zap.String("bucket", cfg.BucketName), zap.Error(err))
	}

	log.Info("Successfully initialized MinIO client", zap.String("endpoint", cfg.Endpoint))
	return client, nil
}

// ObjectClient is the part of the MinIO client the media store needs
type ObjectClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MediaStore keeps album images in a MinIO bucket
type MediaStore struct {
	client     ObjectClient
	bucketName string
	publicBase string
}

func NewMediaStore(client ObjectClient, cfg *config.MinIOConfig) *MediaStore {
	return &MediaStore{
		client:     client,
		bucketName: cfg.BucketName,
		publicBase: storage.PublicURL(cfg.PublicEndpoint, cfg.BucketName),
	}
}

func (s *MediaStore) Store(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*storage.StoredObject, error) {
	_, err := s.client.PutObject(ctx, s.bucketName, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("error uploading %s to MinIO: %w", key, err)
	}

	return &storage.StoredObject{
		Reference: key,
		URL:       storage.PublicURL(s.publicBase, key),
	}, nil
}

func (s *MediaStore) Remove(ctx context.Context, reference string) error {
	err := s.client.RemoveObject(ctx, s.bucketName, reference, minio.RemoveObjectOptions{})
	if err == nil {
		return nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return nil
	}
	return fmt.Errorf("error deleting %s from MinIO: %w", reference, err)
}
