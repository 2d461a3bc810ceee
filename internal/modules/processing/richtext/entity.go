package richtext

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DecodeEntities resolves numeric and named character references.
// Malformed references are left as they are.
func DecodeEntities(text string) string {
	if !strings.Contains(text, "&") {
		return text
	}
	return html.UnescapeString(text)
}

// PlainText strips markup from an HTML fragment, decodes entities once and
// collapses whitespace. Used for titles and captions.
func PlainText(fragment string) string {
	if fragment == "" {
		return ""
	}

	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skipping := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return ""
			}
			return strings.Join(strings.Fields(DecodeEntities(sb.String())), " ")
		case html.StartTagToken:
			if isRawTextTag(z) {
				skipping++
			}
		case html.EndTagToken:
			if isRawTextTag(z) && skipping > 0 {
				skipping--
			}
		case html.TextToken:
			if skipping == 0 {
				sb.Write(z.Raw())
			}
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}

// textContent concatenates the text nodes below n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && classifyInline(n) == inlineDropped {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
