package richtext

import (
	"net/url"
	"strings"

	"github.com/mx-space/content-migrate/internal/models"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// convertImage uploads the image of an <img> or <figure> and returns the
// image block. Any failure drops the image and leaves the rest of the
// document untouched.
func (c *conversion) convertImage(n *html.Node) (models.Block, bool) {
	img := n
	if n.DataAtom != atom.Img {
		img = findElement(n, atom.Img)
	}
	if img == nil {
		return models.Block{}, false
	}

	candidates := c.c.imageCandidates(img)
	if len(candidates) == 0 || c.c.images == nil {
		return models.Block{}, false
	}

	key := c.keys.next()
	ref, ok := c.c.images.UploadWithFallback(c.ctx, candidates)
	if !ok || ref == nil {
		c.c.logger.Warn("image dropped", zap.Strings("candidates", candidates))
		return models.Block{}, false
	}

	alt, _ := attr(img, "alt")
	return models.Block{
		Key:     key,
		Type:    models.BlockTypeImage,
		Asset:   ref,
		Alt:     alt,
		Caption: imageCaption(n, img),
	}, true
}

func imageCaption(n, img *html.Node) string {
	if n != img {
		if fc := findElement(n, atom.Figcaption); fc != nil {
			if text := textContent(fc); text != "" {
				return text
			}
		}
	}
	title, _ := attr(img, "title")
	return title
}

// imageCandidates lists src, data-src and the srcset entries in that order,
// without duplicates.
func (c *Converter) imageCandidates(img *html.Node) []string {
	var raw []string
	if v, ok := attr(img, "src"); ok {
		raw = append(raw, v)
	}
	if v, ok := attr(img, "data-src"); ok {
		raw = append(raw, v)
	}
	if v, ok := attr(img, "srcset"); ok {
		raw = append(raw, parseSrcset(v)...)
	}

	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, candidate := range raw {
		resolved := c.resolve(candidate)
		if resolved == "" || seen[resolved] {
			continue
		}
		seen[resolved] = true
		out = append(out, resolved)
	}
	return out
}

// parseSrcset returns the URLs of a srcset attribute, dropping the width or
// density descriptors.
func parseSrcset(srcset string) []string {
	var out []string
	for _, entry := range strings.Split(srcset, ",") {
		fields := strings.Fields(entry)
		if len(fields) == 0 {
			continue
		}
		out = append(out, fields[0])
	}
	return out
}

func (c *Converter) resolve(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if c.baseURL == nil {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return c.baseURL.ResolveReference(u).String()
}
