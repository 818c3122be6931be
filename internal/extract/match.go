package extract

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
)

// Matcher picks the item whose label identifies field, or nil
type Matcher func(items iter.Seq[*html.Node], label LabelFunc, field string) *html.Node

// ExactFirst matches the first item whose label equals field exactly
func ExactFirst(items iter.Seq[*html.Node], label LabelFunc, field string) *html.Node {
	for item := range items {
		if label(item) == field {
			return item
		}
	}
	return nil
}

// SubstringLast matches items whose label contains field and keeps the last
// one in document order. Labels on some pages carry stray whitespace and
// line breaks, so equality is too strict. When several labels contain the
// field (e.g. "Status" inside "Approval status"), the later node wins; the
// exported history depends on this tie-break.
func SubstringLast(items iter.Seq[*html.Node], label LabelFunc, field string) *html.Node {
	node, _ := LastMatch(items, func(n *html.Node) bool {
		return strings.Contains(label(n), field)
	})
	return node
}

// LastMatch consumes seq and returns the last element satisfying pred
func LastMatch[T any](seq iter.Seq[T], pred func(T) bool) (T, bool) {
	var last T
	found := false
	for v := range seq {
		if pred(v) {
			last = v
			found = true
		}
	}
	return last, found
}
