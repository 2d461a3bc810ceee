package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects below a directory, for dry runs against a local
// CMS or for exporting assets alongside the documents.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates dir if needed. baseURL prefixes returned URLs; when
// empty, file:// URLs are returned.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve asset dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &LocalStore{dir: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Put(ctx context.Context, objectKey string, payload []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := normalizeObjectKey(objectKey)
	if key == "" || strings.Contains("/"+key+"/", "/../") {
		return "", fmt.Errorf("invalid object key %q", objectKey)
	}

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", err
	}

	if s.baseURL != "" {
		return s.baseURL + "/" + encodeObjectKey(key), nil
	}
	return "file://" + filepath.ToSlash(path), nil
}
