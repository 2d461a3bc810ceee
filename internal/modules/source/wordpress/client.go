package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mx-space/content-migrate/internal/config"
	"github.com/mx-space/content-migrate/internal/modules/processing/richtext"
	"github.com/mx-space/content-migrate/internal/modules/source"
	"go.uber.org/zap"
)

const totalPagesHeader = "X-WP-TotalPages"

// wordpress emits date_gmt without a zone designator
const wpTimeLayout = "2006-01-02T15:04:05"

// Client reads documents from the WordPress REST API.
type Client struct {
	http   *http.Client
	cfg    config.SourceConfig
	logger *zap.Logger
}

func NewClient(cfg config.SourceConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &Client{http: &http.Client{Timeout: timeout}, cfg: cfg, logger: logger}
}

// SiteURL returns the site root of the API base (".../wp-json/wp/v2" -> "..."),
// used to resolve relative asset URLs.
func (c *Client) SiteURL() string {
	if i := strings.Index(c.cfg.BaseURL, "/wp-json"); i >= 0 {
		return c.cfg.BaseURL[:i] + "/"
	}
	return c.cfg.BaseURL + "/"
}

// FetchAllOfKind pages through {base}/{kind} until the remote runs out.
// Failures end the walk and the items fetched so far are returned.
func (c *Client) FetchAllOfKind(ctx context.Context, kind string) []source.Item {
	var items []source.Item
	for page := 1; ; page++ {
		if c.cfg.MaxPages > 0 && page > c.cfg.MaxPages {
			c.logger.Info("max pages reached", zap.String("kind", kind), zap.Int("pages", c.cfg.MaxPages))
			break
		}
		if ctx.Err() != nil {
			break
		}

		posts, totalPages, err := c.fetchPage(ctx, kind, page)
		var status *statusError
		if errors.As(err, &status) && status.clientError() {
			if page == 1 {
				c.logger.Warn("first page rejected, check source.base_url", zap.String("kind", kind), zap.Int("status", status.code))
			} else {
				c.logger.Debug("past last page", zap.String("kind", kind), zap.Int("page", page))
			}
			break
		}
		if err != nil {
			c.logger.Warn("fetch page failed", zap.String("kind", kind), zap.Int("page", page), zap.Error(err))
			break
		}
		if len(posts) == 0 {
			break
		}
		for _, p := range posts {
			items = append(items, toItem(p))
		}
		c.logger.Info("fetched page", zap.String("kind", kind), zap.Int("page", page), zap.Int("items", len(posts)))

		if totalPages > 0 && page >= totalPages {
			break
		}
	}
	return items
}

type statusError struct {
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("unexpected status %d", e.code) }

// wordpress answers 400 rest_post_invalid_page_number past the last page
func (e *statusError) clientError() bool { return e.code >= 400 && e.code < 500 }

func (c *Client) pageURL(kind string, page int) string {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(c.cfg.PageSize))
	q.Set("page", strconv.Itoa(page))
	q.Set("_embed", "1")
	if c.cfg.Lang != "" {
		q.Set("lang", c.cfg.Lang)
	}
	return c.cfg.BaseURL + "/" + strings.Trim(kind, "/") + "?" + q.Encode()
}

func (c *Client) fetchPage(ctx context.Context, kind string, page int) ([]post, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(kind, page), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read body: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var posts []post
	if err := decoder.Decode(&posts); err != nil {
		return nil, 0, fmt.Errorf("decode page: %w", err)
	}

	totalPages, _ := strconv.Atoi(strings.TrimSpace(resp.Header.Get(totalPagesHeader)))
	return posts, totalPages, nil
}

func toItem(p post) source.Item {
	return source.Item{
		ID:      p.ID.String(),
		Slug:    unescapeSlug(p.Slug),
		Title:   p.Title.Rendered,
		Content: p.Content.Rendered,
		Format:  source.FormatHTML,
		Date:    parseDate(p.DateGMT, p.Date),
		Locale:  strings.TrimSpace(p.Lang),
		Tags:    termNames(p.Embedded.Terms),
		Link:    p.Link,
	}
}

// unescapeSlug decodes the percent-encoded form wordpress uses for
// non-ASCII slugs.
func unescapeSlug(slug string) string {
	if decoded, err := url.PathUnescape(slug); err == nil {
		return decoded
	}
	return slug
}

// parseDate prefers date_gmt; date is site-local and read as UTC.
func parseDate(values ...string) time.Time {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.UTC()
		}
		if t, err := time.ParseInLocation(wpTimeLayout, v, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}

func termNames(groups [][]term) []string {
	var names []string
	for _, group := range groups {
		for _, t := range group {
			if name := strings.TrimSpace(richtext.DecodeEntities(t.Name)); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}
