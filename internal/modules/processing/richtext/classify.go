package richtext

import (
	"strings"

	"github.com/mx-space/content-migrate/internal/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// nodeKind is the block-level role of a DOM node.
type nodeKind int

const (
	kindIgnored nodeKind = iota // comments, doctypes, blank text
	kindText
	kindSkipped
	kindImage
	kindHeading
	kindList
	kindBlockquote
	kindParagraph
	kindContainer
)

func (k nodeKind) String() string {
	switch k {
	case kindIgnored:
		return "ignored"
	case kindText:
		return "text"
	case kindSkipped:
		return "skipped"
	case kindImage:
		return "image"
	case kindHeading:
		return "heading"
	case kindList:
		return "list"
	case kindBlockquote:
		return "blockquote"
	case kindParagraph:
		return "paragraph"
	case kindContainer:
		return "container"
	default:
		return "unknown"
	}
}

func classify(n *html.Node) nodeKind {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return kindIgnored
		}
		return kindText
	case html.ElementNode:
	case html.DocumentNode:
		return kindContainer
	default:
		return kindIgnored
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Head, atom.Title:
		return kindSkipped
	case atom.Img:
		return kindImage
	case atom.Figure:
		if findElement(n, atom.Img) != nil {
			return kindImage
		}
		return kindContainer
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return kindHeading
	case atom.Ul, atom.Ol:
		return kindList
	case atom.Blockquote:
		return kindBlockquote
	case atom.P:
		return kindParagraph
	case atom.Div:
		if hasBlockChildren(n) {
			return kindContainer
		}
		return kindParagraph
	default:
		return kindContainer
	}
}

// headingStyle returns "h1".."h6" for heading elements.
func headingStyle(n *html.Node) string {
	return n.DataAtom.String()
}

var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Main: true, atom.Aside: true, atom.Nav: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Dl: true, atom.Blockquote: true, atom.Pre: true,
	atom.Figure: true, atom.Img: true, atom.Table: true, atom.Form: true, atom.Hr: true,
}

// hasBlockChildren reports whether any direct child of n is a block-level
// element. Such wrappers are walked instead of flattened into one paragraph.
func hasBlockChildren(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && blockAtoms[c.DataAtom] {
			return true
		}
	}
	return false
}

// inlineKind is the role of a node inside a text block.
type inlineKind int

const (
	inlineTransparent inlineKind = iota
	inlineText
	inlineBreak
	inlineMark
	inlineLink
	inlineDropped
	inlineImage
)

func classifyInline(n *html.Node) inlineKind {
	switch n.Type {
	case html.TextNode:
		return inlineText
	case html.ElementNode:
	default:
		return inlineDropped
	}

	switch n.DataAtom {
	case atom.Br:
		return inlineBreak
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Head, atom.Title:
		return inlineDropped
	case atom.Img:
		return inlineImage
	case atom.A:
		if _, ok := attr(n, "href"); ok {
			return inlineLink
		}
		return inlineTransparent
	}
	if decoratorFor(n.DataAtom) != "" {
		return inlineMark
	}
	return inlineTransparent
}

func decoratorFor(a atom.Atom) string {
	switch a {
	case atom.Strong, atom.B:
		return models.MarkStrong
	case atom.Em, atom.I:
		return models.MarkEm
	case atom.Code:
		return models.MarkCode
	case atom.U:
		return models.MarkUnderline
	case atom.S, atom.Del, atom.Strike:
		return models.MarkStrikeThrough
	}
	return ""
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			v := strings.TrimSpace(a.Val)
			return v, v != ""
		}
	}
	return "", false
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom == a {
			return c
		}
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
