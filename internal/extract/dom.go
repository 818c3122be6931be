package extract

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
)

// IsElement checks if n is an element with the given tag name
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// GetAttribute gets an attribute value from a node
func GetAttribute(n *html.Node, attrKey string) string {
	if n == nil {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

// Descendants yields every node below n in document order
func Descendants(n *html.Node) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		if n == nil {
			return
		}
		var walk func(*html.Node) bool
		walk = func(node *html.Node) bool {
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				if !yield(c) || !walk(c) {
					return false
				}
			}
			return true
		}
		walk(n)
	}
}

// FindFirst finds the first descendant matching a predicate
func FindFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	for node := range Descendants(n) {
		if predicate(node) {
			return node
		}
	}
	return nil
}

// FirstTag finds the first descendant element with the given tag name
func FirstTag(n *html.Node, tag string) *html.Node {
	return FindFirst(n, func(node *html.Node) bool {
		return IsElement(node, tag)
	})
}

// TextContent concatenates every text node below n, untrimmed
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}

	var buf strings.Builder
	for node := range Descendants(n) {
		if node.Type == html.TextNode {
			buf.WriteString(node.Data)
		}
	}
	return buf.String()
}

// FirstChildText returns the text of n's first child: the raw data when it
// is a text node, the full text content when it is an element
func FirstChildText(n *html.Node) string {
	if n == nil || n.FirstChild == nil {
		return ""
	}
	return TextContent(n.FirstChild)
}
