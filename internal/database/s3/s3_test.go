package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	appconfig "album-service/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockObjectClient struct {
	mock.Mock
}

func (m *mockObjectClient) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*s3.PutObjectOutput)
	return output, args.Error(1)
}

func (m *mockObjectClient) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return output, args.Error(1)
}

func testConfig() *appconfig.S3Config {
	return &appconfig.S3Config{
		BucketName: "albums",
		PublicURL:  "https://cdn.example.com",
	}
}

func TestMediaStoreStore(t *testing.T) {
	client := &mockObjectClient{}
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		if seeker, ok := in.Body.(io.Seeker); ok {
			_, _ = seeker.Seek(0, io.SeekStart)
		}
		return aws.ToString(in.Bucket) == "albums" &&
			aws.ToString(in.Key) == "albums/album-1/photo.jpg" &&
			aws.ToString(in.ContentType) == "image/jpeg" &&
			aws.ToInt64(in.ContentLength) == 5 &&
			string(body) == "bytes"
	})).Return(&s3.PutObjectOutput{}, nil)

	store := NewMediaStore(client, testConfig())
	// a plain reader is buffered before upload
	stored, err := store.Store(context.Background(), "albums/album-1/photo.jpg", io.NopCloser(strings.NewReader("bytes")), 5, "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "albums/album-1/photo.jpg", stored.Reference)
	assert.Equal(t, "https://cdn.example.com/"+stored.Reference, stored.URL)
	client.AssertExpectations(t)
}

func TestMediaStoreRemove(t *testing.T) {
	t.Run("treats a missing key as removed", func(t *testing.T) {
		client := &mockObjectClient{}
		client.On("DeleteObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{})

		assert.NoError(t, NewMediaStore(client, testConfig()).Remove(context.Background(), "albums/a/x.png"))
	})

	t.Run("returns other errors", func(t *testing.T) {
		client := &mockObjectClient{}
		client.On("DeleteObject", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		assert.Error(t, NewMediaStore(client, testConfig()).Remove(context.Background(), "albums/a/x.png"))
	})

	t.Run("deletes the referenced key", func(t *testing.T) {
		client := &mockObjectClient{}
		client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
			return aws.ToString(in.Key) == "albums/a/x.png"
		})).Return(&s3.DeleteObjectOutput{}, nil)

		assert.NoError(t, NewMediaStore(client, testConfig()).Remove(context.Background(), "albums/a/x.png"))
		client.AssertExpectations(t)
	})
}
