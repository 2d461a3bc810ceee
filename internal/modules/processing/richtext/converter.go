package richtext

import (
	"context"
	"net/url"
	"strings"

	"github.com/mx-space/content-migrate/internal/models"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ImageUploader stores the first reachable candidate and returns a reference
// to it. Failures are reported by ok=false, never by panicking.
type ImageUploader interface {
	UploadWithFallback(ctx context.Context, candidates []string) (ref *models.AssetReference, ok bool)
}

// Converter turns HTML into Portable Text blocks.
type Converter struct {
	images  ImageUploader
	baseURL *url.URL
	logger  *zap.Logger
}

// NewConverter creates a converter. images may be nil, in which case images
// are dropped.
func NewConverter(images ImageUploader, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{images: images, logger: logger}
}

// WithBaseURL resolves relative image sources against raw.
func (c *Converter) WithBaseURL(raw string) *Converter {
	out := *c
	out.baseURL = nil
	if u, err := url.Parse(strings.TrimSpace(raw)); err == nil && u.IsAbs() {
		out.baseURL = u
	}
	return &out
}

// conversion is the state of one HTMLToBlocks call.
type conversion struct {
	ctx   context.Context
	c     *Converter
	keys  *keyGen
	links map[string]string // href -> mark key
}

func (c *conversion) linkKey(href string) string {
	key, ok := c.links[href]
	if !ok {
		key = c.keys.next()
		c.links[href] = key
	}
	return key
}

var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

// HTMLToBlocks converts an HTML fragment into blocks in document order.
// seed makes the generated keys reproducible, callers pass the document id.
// Empty or unparseable input yields an empty slice.
func (c *Converter) HTMLToBlocks(ctx context.Context, seed, fragment string) []models.Block {
	blocks := []models.Block{}
	if strings.TrimSpace(fragment) == "" {
		return blocks
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), bodyContext)
	if err != nil {
		c.logger.Warn("parse html failed", zap.String("seed", seed), zap.Error(err))
		return blocks
	}

	conv := &conversion{ctx: ctx, c: c, keys: newKeyGen(seed), links: map[string]string{}}
	for _, n := range nodes {
		blocks = append(blocks, conv.convertNode(n)...)
	}
	return blocks
}

func (c *conversion) convertNode(n *html.Node) []models.Block {
	switch classify(n) {
	case kindIgnored, kindSkipped:
		return nil
	case kindText:
		return []models.Block{{
			Key:      c.keys.next(),
			Type:     models.BlockTypeText,
			Style:    models.StyleNormal,
			Children: []models.Span{{Key: c.keys.next(), Type: "span", Text: strings.TrimSpace(n.Data)}},
		}}
	case kindImage:
		if block, ok := c.convertImage(n); ok {
			return []models.Block{block}
		}
		return nil
	case kindHeading:
		return c.textBlock(n, headingStyle(n), "")
	case kindList:
		return c.convertList(n)
	case kindBlockquote:
		return c.textBlock(n, models.StyleBlockquote, "")
	case kindParagraph:
		return c.textBlock(n, models.StyleNormal, "")
	case kindContainer:
		var out []models.Block
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			out = append(out, c.convertNode(child)...)
		}
		return out
	}
	return nil
}

// textBlock builds one text block from n's subtree, or nothing when the
// subtree has no text.
func (c *conversion) textBlock(n *html.Node, style, listItem string) []models.Block {
	key := c.keys.next()
	b := c.newSpanBuilder()
	spans := b.children(n, nil)
	if len(spans) == 0 {
		return nil
	}
	block := models.Block{
		Key:      key,
		Type:     models.BlockTypeText,
		Style:    style,
		MarkDefs: b.markDefs,
		Children: spans,
	}
	if listItem != "" {
		block.ListItem = listItem
		block.Level = 1
	}
	return []models.Block{block}
}

// convertList emits one block per <li>. Nested lists are not unwound, their
// text joins the enclosing item.
func (c *conversion) convertList(n *html.Node) []models.Block {
	listItem := models.ListBullet
	if n.DataAtom == atom.Ol {
		listItem = models.ListNumber
	}
	var out []models.Block
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		out = append(out, c.textBlock(li, models.StyleNormal, listItem)...)
	}
	return out
}
