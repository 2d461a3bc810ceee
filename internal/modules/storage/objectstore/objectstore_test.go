package objectstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appcfg "github.com/mx-space/content-migrate/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingS3 struct {
	input *s3.PutObjectInput
	body  []byte
}

func (r *recordingS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	r.input = in
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	r.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestNewS3StoreRequiresCredentials(t *testing.T) {
	_, err := NewS3Store(appcfg.S3Config{Bucket: "b", Region: "auto"})
	require.Error(t, err)
}

func TestS3StorePut(t *testing.T) {
	store, err := NewS3Store(appcfg.S3Config{
		Endpoint:        "https://acc.r2.cloudflarestorage.com",
		Region:          "auto",
		Bucket:          "media",
		AccessKeyID:     "ak",
		SecretAccessKey: "sk",
		Prefix:          "/migrated/",
	})
	require.NoError(t, err)
	fake := &recordingS3{}
	store.client = fake

	publicURL, err := store.Put(context.Background(), "/images/my photo.png", []byte("png"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "media", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "migrated/images/my photo.png", aws.ToString(fake.input.Key))
	assert.Equal(t, "image/png", aws.ToString(fake.input.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(fake.input.ContentLength))
	assert.Equal(t, []byte("png"), fake.body)
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com/media/migrated/images/my%20photo.png", publicURL)
}

func TestS3StorePublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  appcfg.S3Config
		want string
	}{
		{
			name: "aws virtual hosted",
			cfg:  appcfg.S3Config{Region: "eu-west-1", Bucket: "media"},
			want: "https://media.s3.eu-west-1.amazonaws.com/a/b.jpg",
		},
		{
			name: "custom domain",
			cfg:  appcfg.S3Config{Region: "auto", Bucket: "media", CustomDomain: "https://cdn.example.com/"},
			want: "https://cdn.example.com/a/b.jpg",
		},
		{
			name: "forced path style",
			cfg:  appcfg.S3Config{Region: "us-east-1", Bucket: "media", PathStyle: true},
			want: "https://s3.us-east-1.amazonaws.com/media/a/b.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.AccessKeyID, tt.cfg.SecretAccessKey = "ak", "sk"
			store, err := NewS3Store(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, store.publicURL("a/b.jpg"))
		})
	}
}

func TestLocalStorePut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "https://assets.local/")
	require.NoError(t, err)

	publicURL, err := store.Put(context.Background(), "images/2024/cat.png", []byte("meow"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://assets.local/images/2024/cat.png", publicURL)

	data, err := os.ReadFile(filepath.Join(dir, "images", "2024", "cat.png"))
	require.NoError(t, err)
	assert.Equal(t, "meow", string(data))

	_, err = store.Put(context.Background(), "../escape.png", []byte("x"), "")
	require.Error(t, err)
}
