package markdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLiftsStandaloneImages(t *testing.T) {
	html := Render("Intro\n\n![A cat](https://cdn.example.com/cat.png)\n")
	assert.Contains(t, html, "<p>Intro</p>")
	assert.Contains(t, html, `<figure><img src="https://cdn.example.com/cat.png" alt="A cat"/></figure>`)
	assert.NotContains(t, html, "<p><figure>")
}

func TestRenderCaptionFromAlt(t *testing.T) {
	html := Render("![!Sunset over the bay](/img/sunset.jpg)")
	assert.Contains(t, html, `<figure><img src="/img/sunset.jpg"/><figcaption>Sunset over the bay</figcaption></figure>`)
}

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "", Render("  \n "))
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte("---\nid: \"7\"\nslug: terms\ntitle: Terms of Service\ndate: 2023-05-01\ntags: [legal, terms]\n---\n\n# Heading\n"))
	require.NoError(t, err)
	assert.Equal(t, "7", doc.Meta.ID)
	assert.Equal(t, "terms", doc.Meta.Slug)
	assert.Equal(t, "Terms of Service", doc.Meta.Title)
	assert.Equal(t, []string{"legal", "terms"}, doc.Meta.Tags)
	assert.Equal(t, "\n# Heading\n", doc.Body)
	assert.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), doc.PublishedAt())
}

func TestParseDocumentWithoutHeader(t *testing.T) {
	doc, err := ParseDocument([]byte("just text"))
	require.NoError(t, err)
	assert.Equal(t, "just text", doc.Body)
	assert.True(t, doc.PublishedAt().IsZero())
}

func TestParseDocumentUnterminated(t *testing.T) {
	_, err := ParseDocument([]byte("---\ntitle: x\n"))
	require.Error(t, err)
}
