package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mx-space/content-migrate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

type memoryUploader struct {
	uploads []Asset
	fail    bool
}

func (m *memoryUploader) Upload(_ context.Context, asset Asset) (string, error) {
	if m.fail {
		return "", errors.New("store unavailable")
	}
	m.uploads = append(m.uploads, asset)
	return "image-" + asset.Filename, nil
}

type mapCache map[string]string

func (c mapCache) Get(_ context.Context, key string) (string, error) { return c[key], nil }

func (c mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c[key] = value.(string)
	return nil
}

func newImageServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var hits []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		switch r.URL.Path {
		case "/uploads/good%20one.png", "/uploads/good one.png":
			_, _ = w.Write(pngHeader)
		case "/typed":
			w.Header().Set("Content-Type", "image/webp; charset=binary")
			_, _ = w.Write([]byte("RIFF0000WEBP"))
		case "/big.jpg":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestUploadFromURL(t *testing.T) {
	srv, _ := newImageServer(t)
	up := &memoryUploader{}
	f := NewFetcher(up, Options{}, nil)

	ref, ok := f.UploadFromURL(context.Background(), srv.URL+"/uploads/good%20one.png?ver=3", "hint.png")
	require.True(t, ok)
	assert.Equal(t, &models.AssetReference{Type: "reference", Ref: "image-good one.png"}, ref)

	require.Len(t, up.uploads, 1)
	assert.Equal(t, "good one.png", up.uploads[0].Filename)
	assert.Equal(t, "image/png", up.uploads[0].ContentType)
	assert.Equal(t, pngHeader, up.uploads[0].Data)
}

func TestUploadFromURLContentTypeHeader(t *testing.T) {
	srv, _ := newImageServer(t)
	up := &memoryUploader{}
	_, ok := NewFetcher(up, Options{}, nil).UploadFromURL(context.Background(), srv.URL+"/typed", "")
	require.True(t, ok)
	assert.Equal(t, "image/webp", up.uploads[0].ContentType)
	assert.Equal(t, "typed", up.uploads[0].Filename)
}

func TestUploadFromURLFailures(t *testing.T) {
	srv, _ := newImageServer(t)

	tests := []struct {
		name string
		url  string
		up   *memoryUploader
		opts Options
	}{
		{"not found", srv.URL + "/missing.png", &memoryUploader{}, Options{}},
		{"unreachable", "http://127.0.0.1:1/x.png", &memoryUploader{}, Options{Timeout: time.Second}},
		{"too large", srv.URL + "/big.jpg", &memoryUploader{}, Options{MaxBytes: 16}},
		{"data uri", "data:image/gif;base64,R0lGOD", &memoryUploader{}, Options{}},
		{"upload error", srv.URL + "/uploads/good%20one.png", &memoryUploader{fail: true}, Options{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := NewFetcher(tt.up, tt.opts, nil).UploadFromURL(context.Background(), tt.url, "")
			assert.False(t, ok)
			assert.Nil(t, ref)
			assert.Empty(t, tt.up.uploads)
		})
	}
}

func TestUploadWithFallback(t *testing.T) {
	srv, hits := newImageServer(t)
	up := &memoryUploader{}
	f := NewFetcher(up, Options{}, nil)

	ref, ok := f.UploadWithFallback(context.Background(), []string{
		srv.URL + "/bad-url.png",
		srv.URL + "/uploads/good%20one.png",
		srv.URL + "/never-tried.png",
	})
	require.True(t, ok)
	assert.Equal(t, "image-good one.png", ref.Ref)
	assert.Equal(t, []string{"/bad-url.png", "/uploads/good one.png"}, *hits)
}

func TestUploadWithFallbackAllFail(t *testing.T) {
	srv, _ := newImageServer(t)
	ref, ok := NewFetcher(&memoryUploader{}, Options{}, nil).UploadWithFallback(context.Background(),
		[]string{srv.URL + "/a.png", srv.URL + "/b.png"})
	assert.False(t, ok)
	assert.Nil(t, ref)
}

func TestUploadFromURLUsesCache(t *testing.T) {
	srv, hits := newImageServer(t)
	up := &memoryUploader{}
	cache := mapCache{}
	f := NewFetcher(up, Options{}, nil).WithCache(cache)
	target := srv.URL + "/uploads/good%20one.png"

	first, ok := f.UploadFromURL(context.Background(), target, "")
	require.True(t, ok)
	second, ok := f.UploadFromURL(context.Background(), target, "")
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Len(t, up.uploads, 1)
	assert.Len(t, *hits, 1)
	assert.Len(t, cache, 1)
}

func TestFilenameFromURL(t *testing.T) {
	assert.Equal(t, "photo.jpg", FilenameFromURL("https://x.com/a/photo.jpg?w=300#frag", "h"))
	assert.Equal(t, "my file.png", FilenameFromURL("https://x.com/my%20file.png", "h"))
	assert.Equal(t, "hint.png", FilenameFromURL("https://x.com/", "hint.png"))
	assert.Equal(t, "image", FilenameFromURL("https://x.com", ""))
}

func TestDryRunUploaderIsStable(t *testing.T) {
	a := Asset{ContentType: "image/png", Data: pngHeader}
	first, err := DryRunUploader{}.Upload(context.Background(), a)
	require.NoError(t, err)
	second, err := DryRunUploader{}.Upload(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "image-dryrun-"))
}
