package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FrontMatter is the YAML header of a static markdown document.
type FrontMatter struct {
	ID      string   `yaml:"id"`
	Slug    string   `yaml:"slug"`
	Title   string   `yaml:"title"`
	Date    string   `yaml:"date"`
	Updated string   `yaml:"updated"`
	Locale  string   `yaml:"locale"`
	Tags    []string `yaml:"tags"`
	Draft   bool     `yaml:"draft"`
}

// Document is a markdown file split into header and body.
type Document struct {
	Meta FrontMatter
	Body string
}

// PublishedAt resolves the document date, falling back to Updated.
func (d Document) PublishedAt() time.Time {
	if t := ParseTime(d.Meta.Date); !t.IsZero() {
		return t
	}
	return ParseTime(d.Meta.Updated)
}

// ParseDocument splits an optional "---" delimited YAML header from the body.
func ParseDocument(content []byte) (Document, error) {
	text := strings.TrimPrefix(string(content), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if !strings.HasPrefix(text, "---\n") {
		return Document{Body: text}, nil
	}
	rest := text[len("---"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return Document{}, fmt.Errorf("unterminated front matter")
	}

	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader([]byte(rest[:end])))
	if err := decoder.Decode(&doc.Meta); err != nil && !errors.Is(err, io.EOF) {
		return Document{}, fmt.Errorf("parse front matter: %w", err)
	}

	body := rest[end+len("\n---"):]
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	doc.Body = body
	return doc, nil
}

// ParseTime attempts several common date/time layouts.
func ParseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
