package assets

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/mx-space/content-migrate/internal/models"
	"go.uber.org/zap"
)

const (
	defaultFilename = "image"
	cacheKeyPrefix  = "migrate:asset:"
)

// Cache remembers which asset a source URL was uploaded as.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Options configures a Fetcher.
type Options struct {
	MaxBytes  int64
	Timeout   time.Duration
	UserAgent string
	CacheTTL  time.Duration
}

// Fetcher downloads remote assets and hands them to an Uploader.
type Fetcher struct {
	client   *http.Client
	uploader Uploader
	cache    Cache
	opts     Options
	logger   *zap.Logger
}

func NewFetcher(uploader Uploader, opts Options, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	return &Fetcher{
		client:   &http.Client{Timeout: opts.Timeout},
		uploader: uploader,
		opts:     opts,
		logger:   logger,
	}
}

// WithCache enables URL to asset de-duplication across runs.
func (f *Fetcher) WithCache(cache Cache) *Fetcher {
	f.cache = cache
	return f
}

// UploadFromURL fetches rawURL and uploads it. Failures are logged and
// reported as ok=false.
func (f *Fetcher) UploadFromURL(ctx context.Context, rawURL, filenameHint string) (*models.AssetReference, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || strings.HasPrefix(rawURL, "data:") {
		return nil, false
	}

	if id := f.cached(ctx, rawURL); id != "" {
		return models.NewAssetReference(id), true
	}

	asset, err := f.fetch(ctx, rawURL, filenameHint)
	if err != nil {
		f.logger.Warn("fetch asset failed", zap.String("url", rawURL), zap.Error(err))
		return nil, false
	}

	id, err := f.uploader.Upload(ctx, asset)
	if err != nil {
		f.logger.Warn("upload asset failed", zap.String("url", rawURL), zap.Error(err))
		return nil, false
	}
	f.remember(ctx, rawURL, id)

	f.logger.Info("asset uploaded", zap.String("url", rawURL), zap.String("id", id), zap.Int("bytes", len(asset.Data)))
	return models.NewAssetReference(id), true
}

// UploadWithFallback tries candidates in the given order and returns the
// first one that uploads.
func (f *Fetcher) UploadWithFallback(ctx context.Context, candidates []string) (*models.AssetReference, bool) {
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return nil, false
		}
		if ref, ok := f.UploadFromURL(ctx, candidate, ""); ok {
			return ref, true
		}
	}
	return nil, false
}

func (f *Fetcher) fetch(ctx context.Context, rawURL, filenameHint string) (Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Asset{}, err
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Asset{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Asset{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if f.opts.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, f.opts.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return Asset{}, fmt.Errorf("read body: %w", err)
	}
	if f.opts.MaxBytes > 0 && int64(len(data)) > f.opts.MaxBytes {
		return Asset{}, fmt.Errorf("asset exceeds %d bytes", f.opts.MaxBytes)
	}
	if len(data) == 0 {
		return Asset{}, fmt.Errorf("empty body")
	}

	return Asset{
		Filename:    FilenameFromURL(rawURL, filenameHint),
		ContentType: detectContentType(resp.Header.Get("Content-Type"), data),
		Data:        data,
		SourceURL:   rawURL,
	}, nil
}

// FilenameFromURL returns the unescaped last path segment of rawURL, then
// hint, then "image".
func FilenameFromURL(rawURL, hint string) string {
	if u, err := url.Parse(rawURL); err == nil {
		name := path.Base(u.Path)
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
		if name != "" && name != "." && name != "/" {
			return name
		}
	}
	if hint = strings.TrimSpace(hint); hint != "" {
		return hint
	}
	return defaultFilename
}

func detectContentType(header string, data []byte) string {
	if mediaType, _, err := mime.ParseMediaType(header); err == nil && mediaType != "" && mediaType != "application/octet-stream" {
		return mediaType
	}
	return http.DetectContentType(data)
}

func (f *Fetcher) cacheKey(rawURL string) string {
	sum := sha1.Sum([]byte(rawURL))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (f *Fetcher) cached(ctx context.Context, rawURL string) string {
	if f.cache == nil {
		return ""
	}
	id, err := f.cache.Get(ctx, f.cacheKey(rawURL))
	if err != nil {
		f.logger.Warn("asset cache lookup failed", zap.String("url", rawURL), zap.Error(err))
		return ""
	}
	if id != "" {
		f.logger.Debug("asset cache hit", zap.String("url", rawURL), zap.String("id", id))
	}
	return id
}

func (f *Fetcher) remember(ctx context.Context, rawURL, id string) {
	if f.cache == nil {
		return
	}
	if err := f.cache.Set(ctx, f.cacheKey(rawURL), id, f.opts.CacheTTL); err != nil {
		f.logger.Warn("asset cache store failed", zap.String("url", rawURL), zap.Error(err))
	}
}
