package source

import "time"

// Content formats carried by an Item.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Item is one document read from a source, before conversion.
type Item struct {
	ID      string
	Slug    string
	Title   string // may contain markup and entities
	Content string
	Format  string
	Date    time.Time // UTC; zero when unknown
	Locale  string
	Tags    []string
	Link    string
}

// IsMarkdown reports whether Content needs markdown rendering.
func (i Item) IsMarkdown() bool { return i.Format == FormatMarkdown }
