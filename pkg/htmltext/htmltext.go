// Package htmltext reduces an HTML document to its visible text content.
// The attendance portal serves HTML; the report parser works on flattened
// text, so this package sits between the portal client and the parser.
package htmltext

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Flatten parses the HTML read from r and returns the visible text of its
// body (or of the whole document when no body element is present). Block
// elements contribute line breaks so line-oriented scanning stays possible.
func Flatten(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}

	var b strings.Builder
	collect(root, &b)
	return b.String(), nil
}

// FlattenString is a convenience wrapper around Flatten.
func FlattenString(s string) (string, error) {
	return Flatten(strings.NewReader(s))
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

func collect(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		case "br":
			b.WriteString("\n")
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, b)
	}

	if n.Type == html.ElementNode && isBlock(n.Data) {
		b.WriteString("\n")
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "table", "thead", "tbody",
		"tr", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6", "pre":
		return true
	default:
		return false
	}
}
