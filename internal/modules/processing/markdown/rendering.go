package markdown

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithUnsafe(),
	),
)

var (
	imageTagRegex        = regexp.MustCompile(`(?is)<img\s+[^>]*>`)
	imageAttrRegex       = regexp.MustCompile(`([a-zA-Z:_-]+)\s*=\s*"([^"]*)"`)
	standaloneImageRegex = regexp.MustCompile(`(?is)<p>\s*(<img\s+[^>]*>)\s*</p>`)
	figureParagraphRegex = regexp.MustCompile(`(?is)<p>\s*(<figure>[\s\S]*?</figure>)\s*</p>`)
	captionAltPrefixes   = []string{"!", "¡"}
)

// Render converts markdown to HTML. Images that stand alone in a paragraph
// are lifted into <figure> elements so they survive block conversion; an alt
// text starting with "!" becomes the figure caption.
func Render(markdownText string) string {
	text := strings.TrimSpace(markdownText)
	if text == "" {
		return ""
	}

	var out bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &out); err != nil {
		return "<p>" + template.HTMLEscapeString(text) + "</p>"
	}
	return rewriteImages(out.String())
}

// rewriteImages works on renderer output, so attribute values are already
// escaped and are copied through unchanged.
func rewriteImages(html string) string {
	processed := standaloneImageRegex.ReplaceAllString(html, "<figure>$1</figure>")
	processed = imageTagRegex.ReplaceAllStringFunc(processed, func(tag string) string {
		attrs := parseImageAttrs(tag)
		src := strings.TrimSpace(attrs["src"])
		if src == "" {
			return tag
		}

		alt := strings.TrimSpace(attrs["alt"])
		title := strings.TrimSpace(attrs["title"])
		for _, prefix := range captionAltPrefixes {
			if !strings.HasPrefix(alt, prefix) {
				continue
			}
			caption := strings.TrimSpace(strings.TrimPrefix(alt, prefix))
			if caption == "" {
				caption = title
			}
			return `<img src="` + src + `"/><figcaption>` + caption + `</figcaption>`
		}

		out := `<img src="` + src + `" alt="` + alt + `"`
		if title != "" {
			out += ` title="` + title + `"`
		}
		return out + `/>`
	})
	return figureParagraphRegex.ReplaceAllString(processed, "$1")
}

func parseImageAttrs(tag string) map[string]string {
	attrs := make(map[string]string)
	matches := imageAttrRegex.FindAllStringSubmatch(tag, -1)
	for _, item := range matches {
		if len(item) < 3 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(item[1]))
		if key == "" {
			continue
		}
		attrs[key] = item[2]
	}
	return attrs
}
