package extract

import (
	"iter"
	"strings"

	"github.com/ppiankov/fundscrape/internal/model"
	"golang.org/x/net/html"
)

// ContainerFunc finds a table's primary container in the document, or nil
type ContainerFunc func(doc *html.Node) *html.Node

// ItemsFunc yields the label-bearing items inside a container
type ItemsFunc func(container *html.Node) iter.Seq[*html.Node]

// LabelFunc reads the label text of an item
type LabelFunc func(item *html.Node) string

// Strategy is one location where a matched item's value may live
type Strategy struct {
	Name    string
	Extract func(item *html.Node) string
}

// Chain is an ordered list of strategies; the first non-empty result wins
type Chain []Strategy

// Resolve runs the strategies in priority order and returns the first
// result that is non-empty after trimming, with the winning strategy's name
func (c Chain) Resolve(item *html.Node) (text, strategy string, ok bool) {
	for _, s := range c {
		if text := strings.TrimSpace(s.Extract(item)); text != "" {
			return text, s.Name, true
		}
	}
	return "", "", false
}

// Table describes how one taxonomy is laid out on one site
type Table struct {
	Kind      model.TableKind
	Taxonomy  model.Taxonomy
	Container ContainerFunc
	Items     ItemsFunc
	Label     LabelFunc
	Match     Matcher
	Chain     Chain
	Normalize func(string) string // Optional
}
