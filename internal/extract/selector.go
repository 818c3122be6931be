package extract

import (
	"iter"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// SelectFirst returns the first descendant of root matching a CSS selector
func SelectFirst(root *html.Node, selector string) *html.Node {
	if root == nil {
		return nil
	}
	sel := goquery.NewDocumentFromNode(root).Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}

// SelectAll yields the descendants of root matching a CSS selector, in
// document order
func SelectAll(root *html.Node, selector string) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		if root == nil {
			return
		}
		for _, n := range goquery.NewDocumentFromNode(root).Find(selector).Nodes {
			if !yield(n) {
				return
			}
		}
	}
}

// Container returns a ContainerFunc that selects the first node matching
// selector
func Container(selector string) ContainerFunc {
	return func(doc *html.Node) *html.Node {
		return SelectFirst(doc, selector)
	}
}

// Items returns an ItemsFunc that yields every node matching selector
func Items(selector string) ItemsFunc {
	return func(container *html.Node) iter.Seq[*html.Node] {
		return SelectAll(container, selector)
	}
}

// DocumentRoot is a ContainerFunc for tables whose items are searched across
// the whole document; it never reports the container missing
func DocumentRoot(doc *html.Node) *html.Node {
	return doc
}
