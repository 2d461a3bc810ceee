package richtext

import (
	"slices"
	"strings"

	"github.com/mx-space/content-migrate/internal/models"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// spanBuilder collects the spans and link definitions of one text block.
// It is the only writer of its markDefs; link keys come from the
// conversion-wide href cache so a link keeps its key across blocks.
type spanBuilder struct {
	conv     *conversion
	markDefs []models.MarkDef
	defined  map[string]bool
}

func (c *conversion) newSpanBuilder() *spanBuilder {
	return &spanBuilder{conv: c, defined: map[string]bool{}}
}

// build returns the spans for n and its subtree under the given marks.
func (b *spanBuilder) build(n *html.Node, marks []string) []models.Span {
	switch classifyInline(n) {
	case inlineText:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return []models.Span{b.span(n.Data, marks)}
	case inlineBreak:
		return []models.Span{b.span("\n", marks)}
	case inlineDropped:
		return nil
	case inlineImage:
		// text blocks have no room for images
		src, _ := attr(n, "src")
		b.conv.c.logger.Warn("inline image dropped", zap.String("seed", b.conv.keys.seed), zap.String("src", src))
		return nil
	case inlineMark:
		return b.children(n, withMark(marks, decoratorFor(n.DataAtom)))
	case inlineLink:
		href, _ := attr(n, "href")
		key := b.conv.linkKey(href)
		spans := b.children(n, withMark(marks, key))
		if len(spans) > 0 {
			b.define(key, href)
		}
		return spans
	default:
		return b.children(n, marks)
	}
}

func (b *spanBuilder) children(n *html.Node, marks []string) []models.Span {
	var out []models.Span
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, b.build(c, marks)...)
	}
	return out
}

func (b *spanBuilder) span(text string, marks []string) models.Span {
	return models.Span{
		Key:   b.conv.keys.next(),
		Type:  "span",
		Text:  text,
		Marks: slices.Clone(marks),
	}
}

// define records the link definition on this block once.
func (b *spanBuilder) define(key, href string) {
	if b.defined[href] {
		return
	}
	b.defined[href] = true
	b.markDefs = append(b.markDefs, models.MarkDef{Key: key, Type: "link", Href: href})
}

// withMark returns a copy of marks with mark appended unless already present.
func withMark(marks []string, mark string) []string {
	if slices.Contains(marks, mark) {
		return marks
	}
	out := make([]string, len(marks), len(marks)+1)
	copy(out, marks)
	return append(out, mark)
}
