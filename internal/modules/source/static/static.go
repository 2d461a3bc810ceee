package static

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mx-space/content-migrate/internal/modules/processing/markdown"
	"github.com/mx-space/content-migrate/internal/modules/source"
	"go.uber.org/zap"
)

// Source reads markdown files with YAML front matter from a directory tree.
type Source struct {
	dir    string
	logger *zap.Logger
}

func NewSource(dir string, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{dir: dir, logger: logger}
}

// Items returns every non-draft document ordered by relative path. A file
// that fails to parse is logged and skipped.
func (s *Source) Items() ([]source.Item, error) {
	info, err := os.Stat(s.dir)
	if err != nil {
		return nil, fmt.Errorf("static source: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static source %q is not a directory", s.dir)
	}

	var paths []string
	err = filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isMarkdown(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", s.dir, err)
	}
	sort.Strings(paths)

	items := make([]source.Item, 0, len(paths))
	for _, path := range paths {
		item, ok, err := s.read(path)
		if err != nil {
			s.logger.Warn("skip static document", zap.String("path", path), zap.Error(err))
			continue
		}
		if !ok {
			s.logger.Debug("skip draft", zap.String("path", path))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Source) read(path string) (source.Item, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return source.Item{}, false, err
	}
	doc, err := markdown.ParseDocument(content)
	if err != nil {
		return source.Item{}, false, err
	}
	if doc.Meta.Draft {
		return source.Item{}, false, nil
	}

	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	stem := strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))

	id := strings.TrimSpace(doc.Meta.ID)
	if id == "" {
		id = strings.ReplaceAll(stem, "/", "-")
	}
	slug := strings.TrimSpace(doc.Meta.Slug)
	if slug == "" {
		slug = filepath.Base(stem)
	}
	title := strings.TrimSpace(doc.Meta.Title)
	if title == "" {
		title = slug
	}

	return source.Item{
		ID:      id,
		Slug:    slug,
		Title:   title,
		Content: doc.Body,
		Format:  source.FormatMarkdown,
		Date:    doc.PublishedAt().UTC(),
		Locale:  strings.TrimSpace(doc.Meta.Locale),
		Tags:    doc.Meta.Tags,
	}, true, nil
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
