package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidkit/internal/config"
)

type fakeS3 struct {
	put     *s3.PutObjectInput
	deleted string
	body    string
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = in
	return &s3.PutObjectOutput{ETag: aws.String(`"abc123"`)}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(f.body)),
		ContentLength: aws.Int64(int64(len(f.body))),
		ContentType:   aws.String("application/json"),
		ETag:          aws.String(`"abc123"`),
	}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = aws.ToString(in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		fake := &fakeS3{}
		store := &s3Storage{client: fake, bucket: "exports"}

		info, err := store.Put(ctx, "exports/aidkits/1/x.json", strings.NewReader("{}"), PutObjectOptions{
			Size:        2,
			ContentType: "application/json",
			Metadata:    map[string]string{"aidkit-id": "1"},
		})

		require.NoError(t, err)
		assert.Equal(t, "exports/aidkits/1/x.json", info.Key)
		assert.Equal(t, "abc123", info.ETag)
		assert.Equal(t, int64(2), info.Size)
		assert.Equal(t, "exports", aws.ToString(fake.put.Bucket))
		assert.Equal(t, int64(2), aws.ToInt64(fake.put.ContentLength))
		assert.Equal(t, "1", fake.put.Metadata["aidkit-id"])
	})

	t.Run("unknown size leaves content length unset", func(t *testing.T) {
		fake := &fakeS3{}
		store := &s3Storage{client: fake, bucket: "exports"}

		_, err := store.Put(ctx, "k", strings.NewReader("{}"), PutObjectOptions{Size: -1})

		require.NoError(t, err)
		assert.Nil(t, fake.put.ContentLength)
	})

	t.Run("client error", func(t *testing.T) {
		store := &s3Storage{client: &fakeS3{err: errors.New("denied")}, bucket: "exports"}

		_, err := store.Put(ctx, "k", strings.NewReader("{}"), PutObjectOptions{Size: 2})

		assert.EqualError(t, err, "denied")
	})
}

func TestS3Storage_GetDelete(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{body: `{"id":1}`}
	store := &s3Storage{client: fake, bucket: "exports"}

	rc, info, err := store.Get(ctx, "k")
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(b))
	assert.Equal(t, int64(8), info.Size)
	assert.Equal(t, "application/json", info.ContentType)

	require.NoError(t, store.Delete(ctx, "k"))
	assert.Equal(t, "k", fake.deleted)
}

func TestS3Storage_GetMissingKey(t *testing.T) {
	ctx := context.Background()

	missing := &s3Storage{client: &fakeS3{err: &types.NoSuchKey{Message: aws.String("gone")}}, bucket: "exports"}
	_, _, err := missing.Get(ctx, "exports/aidkits/1/a.json")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.Contains(t, err.Error(), "exports/aidkits/1/a.json")

	broken := &s3Storage{client: &fakeS3{err: errors.New("connection reset")}, bucket: "exports"}
	_, _, err = broken.Get(ctx, "k")
	assert.NotErrorIs(t, err, ErrObjectNotFound)
	assert.EqualError(t, err, "get object k: connection reset")
}

func TestS3Storage_PresignGet(t *testing.T) {
	var gotKey string
	var gotExpiry time.Duration
	store := &s3Storage{
		client: &fakeS3{},
		bucket: "exports",
		presign: func(_ context.Context, in *s3.GetObjectInput, expiry time.Duration) (string, error) {
			gotKey, gotExpiry = aws.ToString(in.Key), expiry
			return "https://signed/" + gotKey, nil
		},
	}

	u, err := store.PresignGet(context.Background(), "a/b.json", time.Minute)

	require.NoError(t, err)
	assert.Equal(t, "https://signed/a/b.json", u)
	assert.Equal(t, "a/b.json", gotKey)
	assert.Equal(t, time.Minute, gotExpiry)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, config.StorageConfig{})
	assert.NoError(t, err)
	assert.Nil(t, store)

	_, err = New(ctx, config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)

	_, err = New(ctx, config.StorageConfig{Driver: "minio"})
	assert.EqualError(t, err, "minio endpoint is required")

	_, err = New(ctx, config.StorageConfig{Driver: "s3"})
	assert.EqualError(t, err, "s3 bucket is required")

	s3Store, err := New(ctx, config.StorageConfig{Driver: "s3", S3: config.S3Config{
		Bucket: "exports", Region: "eu-central-1", AccessKeyID: "id", SecretAccessKey: "secret",
		Endpoint: "http://localhost:9000", PathStyle: true,
	}})
	require.NoError(t, err)
	u, err := s3Store.PresignGet(ctx, "exports/aidkits/1/a.json", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "localhost:9000/exports/exports/aidkits/1/a.json")
	assert.Contains(t, u, "X-Amz-Expires=60")
}
