package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	appconfig "album-service/internal/config"
	"album-service/internal/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// NewClient builds an S3 client. A custom endpoint selects an S3 compatible
// host such as R2.
func NewClient(ctx context.Context, cfg *appconfig.S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// ObjectClient is the part of the S3 client the media store needs
type ObjectClient interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// MediaStore keeps album images in an S3 bucket
type MediaStore struct {
	client     ObjectClient
	bucketName string
	publicURL  string
}

func NewMediaStore(client ObjectClient, cfg *appconfig.S3Config) *MediaStore {
	return &MediaStore{
		client:     client,
		bucketName: cfg.BucketName,
		publicURL:  cfg.PublicURL,
	}
}

func (s *MediaStore) Store(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*storage.StoredObject, error) {
	// the SDK signs the payload, so it needs a seekable body
	body, ok := reader.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("error reading upload: %w", err)
		}
		body = bytes.NewReader(data)
		size = int64(len(data))
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("error uploading %s to S3: %w", key, err)
	}

	return &storage.StoredObject{
		Reference: key,
		URL:       storage.PublicURL(s.publicURL, key),
	}, nil
}

func (s *MediaStore) Remove(ctx context.Context, reference string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(reference),
	})
	if err == nil {
		return nil
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return nil
	}
	return fmt.Errorf("error deleting %s from S3: %w", reference, err)
}
